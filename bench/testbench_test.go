package bench

import (
	"context"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pixelverify/axis"
	"github.com/sarchlab/pixelverify/dut"
	"github.com/sarchlab/pixelverify/frame"
	"github.com/sarchlab/pixelverify/golden"
	"github.com/sarchlab/pixelverify/trace"
	"github.com/sarchlab/pixelverify/verify"
)

type probeCollector struct {
	probes []trace.Probe
}

func (c *probeCollector) Func(ctx sim.HookCtx) {
	if ctx.Pos != trace.HookPosCycle {
		return
	}

	c.probes = append(c.probes, ctx.Item.(trace.Probe))
}

func randomFrame(w, h int, seed int64) frame.Frame {
	f, err := frame.Generate(w, h, frame.PatternRandom, seed)
	Expect(err).NotTo(HaveOccurred())

	return f
}

func gaussianReference(frames ...frame.Frame) []int {
	return frame.Flatten(
		golden.ConvolveAll(frames, golden.Gaussian5x5(), true)...)
}

var _ = Describe("Testbench", func() {
	const (
		width  = 12
		height = 8
	)

	var (
		engine   sim.Engine
		gaussian *dut.Stage
		builder  Builder
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		gaussian = dut.NewGaussian("Gaussian", dut.GaussianConfig{
			Width:    width,
			Height:   height,
			Latency:  3,
			Rounding: true,
		})
		builder = NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithBorder(2)
	})

	Context("with a conforming Gaussian stage", func() {
		It("should pass and observe the full stream", func() {
			f := randomFrame(width, height, 1)

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Verdict).To(Equal(verify.VerdictPass))
			Expect(report.Failure).To(BeNil())
			Expect(report.Warnings).To(BeEmpty())
			Expect(report.Transitions).To(Equal([]string{
				"IDLE", "RESETTING", "STREAMING", "FLUSHING",
				"ALIGNING", "COMPARING", "PASS",
			}))
			Expect(report.InputBeats).To(Equal(width * height))
			Expect(report.Drain.ObservedBeats).To(Equal(width * height))
			Expect(report.Drain.ObservedLasts).To(Equal(height))
			Expect(report.Drain.ObservedUsers).To(Equal(1))
			Expect(report.Drain.TimedOut).To(BeFalse())
			Expect(report.Alignment.Offset).To(Equal(0))
			Expect(report.Comparison.MaxDiff).To(Equal(0))
			Expect(report.Comparison.Masked).To(Equal(width*height - (width-4)*(height-4)))
		})

		It("should pass under random output backpressure", func() {
			f := randomFrame(width, height, 2)

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				WithConsumer(RandomReady(0.5, 3)).
				WithStabilityCheck(true).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())
			Expect(report.OutputStalls).To(BeNumerically(">", 0))
			Expect(report.InputStalls).To(BeNumerically(">", 0))
		})

		It("should pass with a throttled driver", func() {
			f := randomFrame(width, height, 4)

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				WithThrottle(PeriodicStall{Period: 4, Stall: 1}).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())
		})

		It("should stream several frames back to back", func() {
			frames := []frame.Frame{
				randomFrame(width, height, 5),
				randomFrame(width, height, 6),
			}

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(frames...).
				WithReference(gaussianReference(frames...)).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())
			Expect(report.Drain.ObservedBeats).To(Equal(2 * width * height))
			Expect(report.Drain.ObservedLasts).To(Equal(2 * height))
			Expect(report.Drain.ObservedUsers).To(Equal(2))
		})

		It("should drive input ready from the previous output ready", func() {
			f := randomFrame(width, height, 7)
			probes := &probeCollector{}

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				WithConsumer(RandomReady(0.6, 11)).
				WithHook(probes).
				Build("Bench")

			report, err := tb.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())

			Expect(probes.probes).To(HaveLen(int(report.Cycles)))
			Expect(probes.probes[0].Values[trace.Reset]).To(Equal(axis.High))
			Expect(probes.probes[1].Values[trace.Reset]).To(Equal(axis.High))
			Expect(probes.probes[2].Values[trace.Reset]).To(Equal(axis.Low))

			for i := 3; i < len(probes.probes); i++ {
				prev := probes.probes[i-1]
				cur := probes.probes[i]

				Expect(cur.Cycle).To(Equal(prev.Cycle + 1))
				Expect(cur.Values[trace.SReady]).To(
					Equal(prev.Values[trace.MReady]),
					"s_tready at cycle %d", cur.Cycle)
			}
		})

		It("should feed a trace recorder", func() {
			f := randomFrame(width, height, 8)
			rec := trace.NewRecorder("gaussian", "Gaussian", trace.HandshakeSignals())

			tb := builder.
				WithPipeline(gaussian).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				WithHook(rec).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Len()).To(Equal(int(report.Cycles)))
		})
	})

	Context("with a line delay", func() {
		const (
			lineWidth = 10
			lines     = 6
		)

		var (
			lineBuffer *dut.Stage
			ramp       frame.Frame
		)

		BeforeEach(func() {
			lineBuffer = dut.NewLineBuffer("LineBuffer", dut.LineBufferConfig{
				LineWidth: lineWidth,
				Height:    lines,
			})

			var err error
			ramp, err = frame.Generate(lineWidth, lines, frame.PatternRamp, 0)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should recover the delay as the offset", func() {
			tb := builder.
				WithBorder(0).
				WithPipeline(lineBuffer).
				WithFrames(ramp).
				WithReference(ramp.Flat()).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())
			Expect(report.Alignment.Offset).To(Equal(lineWidth + 1))
			Expect(report.UnresolvedBeats).To(Equal(lineWidth + 1))
			Expect(report.Comparison.Unresolved).To(Equal(0))
		})

		It("should warn and still compare when the drain is cut short", func() {
			script := make(Scripted, 53)
			for i := 0; i < 52; i++ {
				script[i] = true
			}

			tb := builder.
				WithBorder(0).
				WithPipeline(lineBuffer).
				WithFrames(ramp).
				WithReference(ramp.Flat()).
				WithConsumer(script).
				WithDrainBudget(16, 100).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Drain.TimedOut).To(BeTrue())
			Expect(report.Drain.ObservedBeats).To(BeNumerically("<", lineWidth*lines))
			Expect(report.Warnings).To(HaveLen(1))
			Expect(report.Warnings[0].Kind).To(Equal(verify.KindDrainTimeout))
			Expect(report.Alignment.Offset).To(Equal(lineWidth + 1))
			Expect(report.Comparison).NotTo(BeNil())
			Expect(report.Passed()).To(BeTrue())
		})
	})

	Context("with injected faults", func() {
		It("should fail on a marker without valid", func() {
			f := randomFrame(width, height, 9)
			faulty := dut.Inject(gaussian, dut.Fault{SidebandCycle: 10})

			tb := builder.
				WithPipeline(faulty).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Verdict).To(Equal(verify.VerdictFail))
			Expect(report.Failure.Kind).To(Equal(verify.KindProtocolViolation))
			Expect(report.Transitions).To(Equal([]string{
				"IDLE", "RESETTING", "STREAMING", "FAIL",
			}))
			Expect(report.Alignment).To(BeNil())
			Expect(report.Comparison).To(BeNil())
		})

		It("should fail on a corrupted interior pixel", func() {
			f := randomFrame(width, height, 10)
			faulty := dut.Inject(gaussian, dut.Fault{
				CorruptBeat:  4*width + 5 + 1,
				CorruptDelta: 9,
			})

			tb := builder.
				WithPipeline(faulty).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failure.Kind).To(Equal(verify.KindToleranceViolation))
			Expect(report.Alignment.Offset).To(Equal(0))
			Expect(report.Comparison.MaxDiff).To(Equal(9))
			Expect(report.Comparison.Worst[0].Row).To(Equal(4))
			Expect(report.Comparison.Worst[0].Col).To(Equal(5))
			Expect(report.FinalState).To(Equal("FAIL"))
		})

		It("should compare what was captured when the input stalls for good", func() {
			f := randomFrame(width, height, 14)
			faulty := dut.Inject(gaussian, dut.Fault{
				StallFrom: 70,
				StallTo:   1 << 20,
			})

			tb := builder.
				WithPipeline(faulty).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				WithDrainBudget(1, 100).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Drain.TimedOut).To(BeTrue())
			Expect(report.Drain.ObservedBeats).To(
				BeNumerically("<", width*height/2))
			Expect(report.Warnings[0].Kind).To(Equal(verify.KindDrainTimeout))
			Expect(report.Alignment.Offset).To(Equal(0))
			Expect(report.Alignment.Error).To(BeZero())
			Expect(report.Comparison).NotTo(BeNil())
			Expect(report.Comparison.Compared).To(BeNumerically(">", 0))
			Expect(report.Transitions).To(ContainElement("COMPARING"))
			Expect(report.Passed()).To(BeTrue())
		})

		It("should ignore a corrupted border pixel", func() {
			f := randomFrame(width, height, 11)
			faulty := dut.Inject(gaussian, dut.Fault{
				CorruptBeat:  1,
				CorruptDelta: 50,
			})

			tb := builder.
				WithPipeline(faulty).
				WithFrames(f).
				WithReference(gaussianReference(f)).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed()).To(BeTrue())
		})
	})

	Context("with a mocked pipeline", func() {
		var (
			mockCtrl *gomock.Controller
			pipeline *MockPipeline
			risings  int
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			pipeline = NewMockPipeline(mockCtrl)
			risings = 0

			pipeline.EXPECT().Name().Return("Mock").AnyTimes()
			pipeline.EXPECT().Param(gomock.Any()).Return(0, false).AnyTimes()
			pipeline.EXPECT().SetReset(gomock.Any()).AnyTimes()
			pipeline.EXPECT().SetInput(gomock.Any()).AnyTimes()
			pipeline.EXPECT().SetOutReady(gomock.Any()).AnyTimes()
			pipeline.EXPECT().Rising().Do(func() { risings++ }).AnyTimes()
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should time out when the pipeline never accepts input", func() {
			pipeline.EXPECT().InReady().Return(axis.Low).AnyTimes()
			pipeline.EXPECT().Output().Return(axis.Idle).AnyTimes()

			f := randomFrame(4, 4, 1)
			tb := builder.
				WithPipeline(pipeline).
				WithFrames(f).
				WithReference(f.Flat()).
				WithDrainBudget(16, 10).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Drain.TimedOut).To(BeTrue())
			Expect(report.Drain.Budget).To(Equal(uint64(16*16 + 10)))
			Expect(report.Drain.ObservedBeats).To(Equal(0))
			Expect(report.Warnings[0].Kind).To(Equal(verify.KindDrainTimeout))
			Expect(report.Failure.Kind).To(Equal(verify.KindAlignmentFailure))
			Expect(report.Alignment).NotTo(BeNil())
			Expect(report.Alignment.Candidates).To(Equal(0))
			Expect(report.Cycles).To(Equal(uint64(DefaultResetCycles + 1 + 266)))
			Expect(risings).To(Equal(int(report.Cycles)))
		})

		It("should fail on the first cycle with last but no valid", func() {
			pipeline.EXPECT().InReady().Return(axis.High).AnyTimes()
			pipeline.EXPECT().Output().DoAndReturn(func() axis.Bus {
				b := axis.Idle
				b.Ready = axis.High
				b.Last = axis.High
				return b
			}).AnyTimes()

			f := randomFrame(4, 4, 1)
			tb := builder.
				WithPipeline(pipeline).
				WithFrames(f).
				WithReference(f.Flat()).
				Build("Bench")

			report, err := tb.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failure.Kind).To(Equal(verify.KindProtocolViolation))
			Expect(report.Failure.Details["cycle"]).To(Equal(uint64(DefaultResetCycles + 1)))
		})
	})

	It("should stop when the context is cancelled", func() {
		f := randomFrame(width, height, 12)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		tb := builder.
			WithPipeline(gaussian).
			WithFrames(f).
			WithReference(gaussianReference(f)).
			Build("Bench")

		report, err := tb.Run(ctx)

		Expect(err).To(MatchError(context.Canceled))
		Expect(report.Verdict).To(Equal(verify.VerdictFail))
		Expect(report.FinalState).To(Equal("IDLE"))
	})

	It("should refuse frames that do not match the pipeline", func() {
		f := randomFrame(4, 4, 1)

		tb := builder.
			WithPipeline(gaussian).
			WithFrames(f).
			WithReference(f.Flat()).
			Build("Bench")

		_, err := tb.Run(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("should only run once", func() {
		f := randomFrame(width, height, 13)

		tb := builder.
			WithPipeline(gaussian).
			WithFrames(f).
			WithReference(gaussianReference(f)).
			Build("Bench")

		_, err := tb.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		_, err = tb.Run(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
