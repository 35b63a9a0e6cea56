package brain_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

var _ = Describe("Guard", func() {
	var (
		ctx   context.Context
		guard *brain.Guard
	)

	BeforeEach(func() {
		ctx = context.Background()
		guard = brain.NewGuard(config.OracleConfig{
			Timeout:      50 * time.Millisecond,
			MaxAttempts:  3,
			RetryBackoff: time.Millisecond,
		})
	})

	It("returns nil on first success", func() {
		calls := 0
		err := guard.Do(ctx, model.OracleStageClassify, func(context.Context) error {
			calls++
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("retries transient failures", func() {
		calls := 0
		err := guard.Do(ctx, model.OracleStageMatch, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset")
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(3))
	})

	It("wraps exhausted retries as oracle unavailable", func() {
		calls := 0
		err := guard.Do(ctx, model.OracleStageSummarize, func(context.Context) error {
			calls++
			return errors.New("connection reset")
		})
		Expect(err).To(MatchError(model.ErrOracleUnavailable))
		Expect(calls).To(Equal(3))
	})

	It("treats a timeout as a failure without retrying", func() {
		calls := 0
		err := guard.Do(ctx, model.OracleStageMatch, func(callCtx context.Context) error {
			calls++
			<-callCtx.Done()
			return callCtx.Err()
		})
		Expect(err).To(MatchError(model.ErrOracleUnavailable))
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(calls).To(Equal(1))
	})

	It("fails fast when the caller context is already cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		err := guard.Do(cancelled, model.OracleStageClassify, func(context.Context) error {
			calls++
			return nil
		})
		Expect(err).To(MatchError(model.ErrOracleUnavailable))
		Expect(calls).To(Equal(0))
	})
})
