package loop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/metrics"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl   *gomock.Controller
		env        *MockEnvironment
		strategy   *MockStrategy
		opened     int
		open       plant.Opener
		cfg        Config
		s0, s1, s2 plant.State
		a0, a1     plant.Action
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		env = NewMockEnvironment(mockCtrl)
		strategy = NewMockStrategy(mockCtrl)
		opened = 0
		open = func() (plant.Environment, error) {
			opened++
			return env, nil
		}
		cfg = Config{
			Name:   "test",
			Icon:   plant.IconDot,
			Text:   plant.TextClassic,
			Logger: zerolog.Nop(),
		}

		s0 = plant.State{BallX: 0.03, Detected: true}
		s1 = plant.State{BallX: 0.02, Detected: true}
		s2 = plant.State{BallX: 0.01, Detected: true}
		a0 = plant.Action{Pitch: -2}
		a1 = plant.Action{Pitch: -1}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should feed each state to the strategy and each action to step", func() {
		cfg.MaxTicks = 2
		gomock.InOrder(
			env.EXPECT().Reset(gomock.Any(), plant.IconDot, plant.TextClassic).Return(s0, nil),
			strategy.EXPECT().Compute(gomock.Any(), s0).Return(a0, nil, nil),
			env.EXPECT().Step(gomock.Any(), a0).Return(s1, nil),
			strategy.EXPECT().Compute(gomock.Any(), s1).Return(a1, plant.Info{"k": 1}, nil),
			env.EXPECT().Step(gomock.Any(), a1).Return(s2, nil),
			env.EXPECT().Close().Return(nil),
		)

		sched := New(open, strategy, cfg)
		Expect(sched.Status()).To(Equal(StatusUninitialized))

		err := sched.Run(context.Background())

		Expect(err).ToNot(HaveOccurred())
		Expect(sched.Ticks()).To(Equal(2))
		Expect(sched.Status()).To(Equal(StatusTerminated))
		Expect(opened).To(Equal(1))
	})

	It("should stop at the failing tick and still close", func() {
		boom := errors.New("server gone")
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		gomock.InOrder(
			strategy.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(a0, nil, nil).Times(2),
			strategy.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(plant.Action{}, nil, boom),
		)
		env.EXPECT().Step(gomock.Any(), gomock.Any()).Return(s1, nil).Times(2)
		env.EXPECT().Close().Return(nil)

		err := New(open, strategy, cfg).Run(context.Background())

		var tickErr *TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Tick).To(Equal(3))
		Expect(tickErr.Stage).To(Equal(StageStrategy))
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("should report step failures with the step stage", func() {
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).Return(a0, nil, nil)
		env.EXPECT().Step(gomock.Any(), a0).Return(plant.State{}, plant.ErrHardwareFault)
		env.EXPECT().Close().Return(nil)

		err := New(open, strategy, cfg).Run(context.Background())

		var tickErr *TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Stage).To(Equal(StageStep))
		Expect(tickErr.Tick).To(Equal(1))
		Expect(errors.Is(err, plant.ErrHardwareFault)).To(BeTrue())
	})

	It("should not close an environment that failed to open", func() {
		open = func() (plant.Environment, error) {
			return nil, errors.New("no plate")
		}

		sched := New(open, strategy, cfg)
		err := sched.Run(context.Background())

		var tickErr *TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Stage).To(Equal(StageOpen))
		Expect(sched.Status()).To(Equal(StatusTerminated))
	})

	It("should close after a reset failure", func() {
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(plant.State{}, errors.New("servo fault"))
		env.EXPECT().Close().Return(nil)

		err := New(open, strategy, cfg).Run(context.Background())

		var tickErr *TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Stage).To(Equal(StageReset))
	})

	It("should report a close failure when the session otherwise succeeded", func() {
		cfg.MaxTicks = 1
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).Return(a0, nil, nil)
		env.EXPECT().Step(gomock.Any(), a0).Return(s1, nil)
		env.EXPECT().Close().Return(errors.New("stuck servo"))

		err := New(open, strategy, cfg).Run(context.Background())

		var tickErr *TickError
		Expect(errors.As(err, &tickErr)).To(BeTrue())
		Expect(tickErr.Stage).To(Equal(StageClose))
		Expect(tickErr.Tick).To(Equal(1))
	})

	It("should convert a strategy panic into an error", func() {
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).DoAndReturn(
			func(context.Context, plant.State) (plant.Action, plant.Info, error) {
				panic("index out of range")
			})
		env.EXPECT().Close().Return(nil)

		err := New(open, strategy, cfg).Run(context.Background())

		Expect(errors.Is(err, ErrStrategyPanic)).To(BeTrue())
	})

	It("should treat cancellation as a clean stop", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).DoAndReturn(
			func(context.Context, plant.State) (plant.Action, plant.Info, error) {
				cancel()
				return a0, nil, nil
			})
		env.EXPECT().Step(gomock.Any(), a0).DoAndReturn(
			func(ctx context.Context, _ plant.Action) (plant.State, error) {
				return plant.State{}, ctx.Err()
			})
		env.EXPECT().Close().Return(nil)

		sched := New(open, strategy, cfg)
		Expect(sched.Run(ctx)).To(Succeed())
		Expect(sched.Ticks()).To(Equal(0))
	})

	It("should treat a pacing wait past the deadline as a clean stop", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).Return(a0, nil, nil)
		env.EXPECT().Step(gomock.Any(), a0).Return(plant.State{}, plant.ErrPacingDeadline)
		env.EXPECT().Close().Return(nil)

		Expect(New(open, strategy, cfg).Run(ctx)).To(Succeed())
	})

	It("should report a strategy timeout as a failure while the deadline is far away", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		timeout := fmt.Errorf("inference: %w", context.DeadlineExceeded)
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).Return(plant.Action{}, nil, timeout)
		env.EXPECT().Close().Return(nil)

		err := New(open, strategy, cfg).Run(ctx)

		var te *TickError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Stage).To(Equal(StageStrategy))
		Expect(te.Tick).To(Equal(1))
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})

	It("should stop on an inference request timeout", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		u, err := url.Parse(srv.URL)
		Expect(err).NotTo(HaveOccurred())
		port, err := strconv.Atoi(u.Port())
		Expect(err).NotTo(HaveOccurred())

		opts := control.DefaultOptions()
		opts.Timeout = 20 * time.Millisecond
		remote, err := control.NewInference(u.Hostname(), port, opts)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		env.EXPECT().Close().Return(nil)

		sched := New(open, remote, cfg)
		err = sched.Run(ctx)

		var te *TickError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Stage).To(Equal(StageStrategy))
		Expect(errors.Is(err, control.ErrInference)).To(BeTrue())
		Expect(sched.Ticks()).To(Equal(0))
	})

	It("should report a step timeout as a failure while the deadline is far away", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), s0).Return(a0, nil, nil)
		env.EXPECT().Step(gomock.Any(), a0).Return(plant.State{}, context.DeadlineExceeded)
		env.EXPECT().Close().Return(nil)

		var te *TickError
		Expect(errors.As(New(open, strategy, cfg).Run(ctx), &te)).To(BeTrue())
		Expect(te.Stage).To(Equal(StageStep))
	})

	It("should not start when the context is already done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		env.EXPECT().Close().Return(nil)

		sched := New(open, strategy, cfg)
		Expect(sched.Run(ctx)).To(Succeed())
		Expect(sched.Ticks()).To(Equal(0))
	})

	It("should refuse to run twice", func() {
		cfg.MaxTicks = 1
		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(a0, nil, nil)
		env.EXPECT().Step(gomock.Any(), gomock.Any()).Return(s1, nil)
		env.EXPECT().Close().Return(nil)

		sched := New(open, strategy, cfg)
		Expect(sched.Run(context.Background())).To(Succeed())
		Expect(sched.Run(context.Background())).To(MatchError(ErrAlreadyRun))
		Expect(opened).To(Equal(1))
	})

	It("should show observers every decision", func() {
		cfg.MaxTicks = 3
		effort := metrics.NewControlEffort()
		cfg.Observers = []Observer{effort}
		cfg.Metrics = metrics.NewCollector()

		env.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(s0, nil)
		strategy.EXPECT().Compute(gomock.Any(), gomock.Any()).Return(plant.Action{Pitch: 3}, nil, nil).Times(3)
		env.EXPECT().Step(gomock.Any(), gomock.Any()).Return(s1, nil).Times(3)
		env.EXPECT().Close().Return(nil)

		Expect(New(open, strategy, cfg).Run(context.Background())).To(Succeed())
		Expect(effort.Value()).To(BeNumerically("==", 3))
	})
})
