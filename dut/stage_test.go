package dut

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/golden"
)

func resetPipeline(p Pipeline) {
	p.SetReset(true)
	p.Rising()
	p.Rising()
	p.SetReset(false)
	p.Rising()
}

type cycleRecord struct {
	inReady axis.Logic
	out     axis.Bus
}

// clock drives in through p with a valid-held-until-ready loop and returns
// the transferred output beats together with what was seen each cycle.
func clock(
	p Pipeline,
	in []axis.Bus,
	ready func(cycle int) bool,
	cycles int,
) ([]axis.Beat, []cycleRecord) {
	var (
		out     []axis.Beat
		records []cycleRecord
		sent    int
	)

	for c := 0; c < cycles; c++ {
		b := axis.Idle
		if sent < len(in) {
			b = in[sent]
		}

		p.SetInput(b)
		p.SetOutReady(axis.Bit(ready(c)))

		accepted := sent < len(in) && p.InReady().IsHigh()
		o := p.Output()
		records = append(records, cycleRecord{inReady: p.InReady(), out: o})

		if o.Fires() {
			out = append(out, axis.BeatFrom(o, uint64(c)))
		}

		p.Rising()

		if accepted {
			sent++
		}
	}

	return out, records
}

func always(int) bool { return true }

func dataOf(beats []axis.Beat) []int {
	out := make([]int, len(beats))
	for i, b := range beats {
		out[i], _ = b.Data.Int()
	}

	return out
}

var _ = Describe("Stage", func() {
	var (
		f frame.Frame
		g *Stage
	)

	BeforeEach(func() {
		f, _ = frame.Generate(8, 6, frame.PatternRandom, 5)
		g = NewGaussian("Gaussian", GaussianConfig{
			Width:    8,
			Height:   6,
			Latency:  3,
			Rounding: true,
		})
	})

	It("should be unresolved before reset", func() {
		Expect(g.InReady().IsX()).To(BeTrue())
		Expect(g.Output().Valid.IsX()).To(BeTrue())
		Expect(g.Output().Data.IsX()).To(BeTrue())

		g.Rising()
		Expect(g.Output().Valid.IsX()).To(BeTrue())
	})

	It("should expose its parameters", func() {
		Expect(g.Name()).To(Equal("Gaussian"))
		w, ok := g.Param(ParamWidth)
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(8))

		l, _ := g.Param(ParamLatency)
		Expect(l).To(Equal(3))

		_, ok = g.Param("NOPE")
		Expect(ok).To(BeFalse())
	})

	It("should blur a frame like the reference", func() {
		resetPipeline(g)

		out, _ := clock(g, axis.Encode(f), always, 400)

		Expect(out).To(HaveLen(48))
		ref := golden.Convolve(f, golden.Gaussian5x5(), true)
		Expect(dataOf(out)).To(Equal(ref.Flat()))

		frames, err := axis.Decode(out, 8, 6)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(1))
		Expect(g.Accepted()).To(Equal(48))
		Expect(g.Transferred()).To(Equal(48))
		Expect(g.Pending()).To(Equal(0))
	})

	It("should follow output ready within one cycle", func() {
		big, _ := frame.Generate(16, 16, frame.PatternRandom, 1)
		g = NewGaussian("Gaussian", GaussianConfig{Width: 16, Height: 16, Latency: 2})
		resetPipeline(g)

		ready := func(c int) bool { return c < 40 || c >= 50 }
		_, records := clock(g, axis.Encode(big), ready, 80)

		for c := 1; c < 80; c++ {
			Expect(records[c].inReady).To(Equal(axis.Bit(ready(c-1))),
				"cycle %d", c)
		}
	})

	It("should hold its output while stalled", func() {
		resetPipeline(g)

		ready := func(c int) bool { return c%3 == 0 }
		out, records := clock(g, axis.Encode(f), ready, 600)

		stalls := 0
		for c := 0; c+1 < len(records); c++ {
			o := records[c].out
			if o.Valid.IsHigh() && !o.Ready.IsHigh() {
				stalls++
				next := records[c+1].out
				Expect(next.Valid.IsHigh()).To(BeTrue())
				Expect(next.SamePayload(o)).To(BeTrue())
			}
		}

		Expect(stalls).To(BeNumerically(">", 0))
		Expect(dataOf(out)).To(Equal(
			golden.Convolve(f, golden.Gaussian5x5(), true).Flat()))
	})

	It("should drop ready while held in reset", func() {
		resetPipeline(g)
		g.SetOutReady(axis.High)
		g.Rising()
		Expect(g.InReady().IsHigh()).To(BeTrue())

		g.SetReset(true)
		g.Rising()
		Expect(g.InReady()).To(Equal(axis.Low))
		Expect(g.Output().Valid).To(Equal(axis.Low))
	})

	It("should start counting again after a second reset", func() {
		resetPipeline(g)
		clock(g, axis.Encode(f), always, 400)
		Expect(g.Accepted()).To(Equal(48))
		Expect(g.Transferred()).To(Equal(48))

		resetPipeline(g)
		Expect(g.Accepted()).To(Equal(0))
		Expect(g.Transferred()).To(Equal(0))
		Expect(g.Pending()).To(Equal(0))

		out, _ := clock(g, axis.Encode(f), always, 400)
		Expect(dataOf(out)).To(Equal(
			golden.Convolve(f, golden.Gaussian5x5(), true).Flat()))
		Expect(g.Accepted()).To(Equal(48))
		Expect(g.Transferred()).To(Equal(48))
	})

	It("should differ only at the border with zero edges", func() {
		z := NewGaussian("Zero", GaussianConfig{
			Width: 8, Height: 6, Latency: 1, Rounding: true, Edge: EdgeZero,
		})
		u, _ := frame.Generate(8, 6, frame.PatternUniform, 0)
		resetPipeline(z)

		out, _ := clock(z, axis.Encode(u), always, 400)

		data := dataOf(out)
		Expect(data).To(HaveLen(48))
		Expect(data[0]).To(BeNumerically("<", 128))
		Expect(data[2*8+3]).To(Equal(128))
	})
})

var _ = Describe("NMS stage", func() {
	It("should suppress like the reference", func() {
		mag, _ := frame.Generate(9, 7, frame.PatternRandom, 2)
		dir := golden.UniformDirections(9, 7, golden.DirEW)
		for i := range dir.Dirs {
			dir.Dirs[i] = golden.Direction(i % 4)
		}

		n := NewNMS("NMS", NMSConfig{Width: 9, Height: 7, Latency: 2})
		resetPipeline(n)

		out, _ := clock(n, axis.Encode(golden.PackFrame(mag, dir)), always, 300)

		ref, err := golden.NonMaxSuppress(mag, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(dataOf(out)).To(Equal(ref.Flat()))
	})
})

var _ = Describe("Line buffer", func() {
	It("should delay by one line plus one", func() {
		in, _ := frame.Generate(4, 3, frame.PatternRamp, 0)
		lb := NewLineBuffer("LineBuffer", LineBufferConfig{LineWidth: 4, Height: 3})
		resetPipeline(lb)

		out, _ := clock(lb, axis.Encode(in), always, 100)

		Expect(out).To(HaveLen(12))
		delay, _ := lb.Param(ParamDelay)
		Expect(delay).To(Equal(5))
		for i, b := range out {
			Expect(b.Last).To(Equal(i%4 == 3))
			if i < 5 {
				Expect(b.Data.IsX()).To(BeTrue())
				continue
			}
			Expect(b.Data).To(Equal(axis.Val(uint64(i - 5))))
		}
	})
})

var _ = Describe("Faulty", func() {
	It("should corrupt the chosen beat", func() {
		u, _ := frame.Generate(8, 6, frame.PatternUniform, 0)
		p := Inject(NewGaussian("Gaussian", GaussianConfig{
			Width: 8, Height: 6, Latency: 1, Rounding: true,
		}), Fault{CorruptBeat: 3, CorruptDelta: 7})
		resetPipeline(p)

		out, _ := clock(p, axis.Encode(u), always, 300)

		data := dataOf(out)
		Expect(data).To(HaveLen(48))
		Expect(data[2]).To(Equal(135))
		Expect(data[1]).To(Equal(128))
		Expect(data[3]).To(Equal(128))
	})

	It("should glitch a sideband", func() {
		u, _ := frame.Generate(8, 6, frame.PatternUniform, 0)
		p := Inject(NewGaussian("Gaussian", GaussianConfig{
			Width: 8, Height: 6, Latency: 1,
		}), Fault{SidebandCycle: 5})
		resetPipeline(p)

		_, records := clock(p, axis.Encode(u), always, 20)

		glitches := 0
		for _, r := range records {
			if r.out.SidebandWithoutValid() {
				glitches++
			}
		}
		Expect(glitches).To(Equal(1))
	})

	It("should hold input ready low while stalling", func() {
		u, _ := frame.Generate(8, 6, frame.PatternUniform, 0)
		p := Inject(NewGaussian("Gaussian", GaussianConfig{
			Width: 8, Height: 6, Latency: 1,
		}), Fault{StallFrom: 10, StallTo: 20})
		resetPipeline(p)

		out, records := clock(p, axis.Encode(u), always, 300)

		for c := 7; c < 17; c++ {
			Expect(records[c].inReady).To(Equal(axis.Low))
		}
		Expect(out).To(HaveLen(48))
	})
})
