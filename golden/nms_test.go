package golden

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pixelverify/frame"
)

var _ = Describe("NonMaxSuppress", func() {
	var mag frame.Frame

	BeforeEach(func() {
		mag = frame.MustNew(10, 10)
	})

	It("should suppress a centre beaten along NE-SW", func() {
		mag.Set(5, 5, 100)
		mag.Set(4, 6, 255)
		mag.Set(6, 4, 50)

		out, err := NonMaxSuppress(mag, UniformDirections(10, 10, DirNESW))

		Expect(err).NotTo(HaveOccurred())
		Expect(out.At(5, 5)).To(Equal(0))
		Expect(out.At(4, 6)).To(Equal(255))
	})

	It("should keep a local maximum along E-W", func() {
		mag.Set(3, 3, 80)
		mag.Set(3, 2, 40)
		mag.Set(3, 4, 60)
		mag.Set(2, 3, 200)

		out, _ := NonMaxSuppress(mag, UniformDirections(10, 10, DirEW))

		Expect(out.At(3, 3)).To(Equal(80))
	})

	It("should compare vertically for N-S", func() {
		mag.Set(3, 3, 80)
		mag.Set(2, 3, 200)

		out, _ := NonMaxSuppress(mag, UniformDirections(10, 10, DirNS))

		Expect(out.At(3, 3)).To(Equal(0))
		Expect(out.At(2, 3)).To(Equal(200))
	})

	It("should let a plateau survive", func() {
		for c := 2; c <= 6; c++ {
			mag.Set(4, c, 90)
		}

		out, _ := NonMaxSuppress(mag, UniformDirections(10, 10, DirEW))

		for c := 2; c <= 6; c++ {
			Expect(out.At(4, c)).To(Equal(90))
		}
	})

	It("should zero the border", func() {
		mag.Set(0, 5, 255)
		mag.Set(9, 9, 255)
		mag.Set(5, 0, 255)

		out, _ := NonMaxSuppress(mag, UniformDirections(10, 10, DirNWSE))

		Expect(out.At(0, 5)).To(Equal(0))
		Expect(out.At(9, 9)).To(Equal(0))
		Expect(out.At(5, 0)).To(Equal(0))
	})

	It("should reject a mismatched direction grid", func() {
		_, err := NonMaxSuppress(mag, UniformDirections(9, 10, DirEW))

		Expect(err).To(HaveOccurred())
	})

	It("should pack and unpack", func() {
		v := PackNMS(100, DirNESW)

		Expect(v).To(Equal(uint16(1<<12 | 100)))

		m, d := UnpackNMS(v)
		Expect(m).To(Equal(100))
		Expect(d).To(Equal(DirNESW))
		Expect(d.String()).To(Equal("NE-SW"))
	})

	It("should pack whole frames", func() {
		mag.Set(1, 1, 4095)
		dir := UniformDirections(10, 10, DirNWSE)

		m, d := UnpackFrame(PackFrame(mag, dir))

		Expect(m.Equal(mag)).To(BeTrue())
		Expect(d.At(1, 1)).To(Equal(DirNWSE))
	})
})

var _ = Describe("DelayLine", func() {
	It("should delay by the register depth", func() {
		Expect(DelayLine([]int{1, 2, 3, 4}, 2)).To(Equal([]int{0, 0, 1, 2}))
	})

	It("should tap rows", func() {
		in := []int{1, 2, 3, 4, 5, 6}
		taps := RowTaps(in, 2, 3)

		Expect(taps[2]).To(Equal(in))
		Expect(taps[1]).To(Equal([]int{0, 0, 1, 2, 3, 4}))
		Expect(taps[0]).To(Equal([]int{0, 0, 0, 0, 1, 2}))
	})
})
