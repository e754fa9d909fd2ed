package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var (
		ctx context.Context
		bus *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers synchronously to every subscriber of the type", func() {
		var seen []int64
		bus.Subscribe(events.EventTypeAccessChanged, func(_ context.Context, e events.Event) error {
			seen = append(seen, e.(*events.AccessChangedEvent).EmpresaID)
			return nil
		})
		bus.Subscribe(events.EventTypeStockChanged, func(context.Context, events.Event) error {
			Fail("stock handler must not see access events")
			return nil
		})

		Expect(bus.PublishSync(ctx, events.NewAccessChangedEvent(3, "role.created"))).To(Succeed())
		Expect(seen).To(Equal([]int64{3}))
	})

	It("joins handler errors and recovers panics", func() {
		boom := errors.New("boom")
		bus.Subscribe(events.EventTypeAccessChanged, func(context.Context, events.Event) error { return boom })
		bus.Subscribe(events.EventTypeAccessChanged, func(context.Context, events.Event) error { panic("bad handler") })

		err := bus.PublishSync(ctx, events.NewAccessChangedEvent(1, "test"))
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("bad handler"))
	})

	It("runs async handlers with a context that outlives the request", func() {
		release := make(chan struct{})
		seen := make(chan error, 1)
		bus.Subscribe(events.EventTypeStockChanged, func(hctx context.Context, _ events.Event) error {
			<-release
			seen <- hctx.Err()
			return nil
		})

		reqCtx, cancel := context.WithCancel(ctx)
		Expect(bus.Publish(reqCtx, events.NewStockChangedEvent(1, 2, -1, 9))).To(Succeed())
		cancel()
		close(release)
		bus.Wait()

		Expect(<-seen).NotTo(HaveOccurred())
	})

	It("ignores events without subscribers", func() {
		Expect(bus.Publish(ctx, events.NewStockChangedEvent(1, 2, 1, 1))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewAccessChangedEvent(1, "none"))).To(Succeed())
	})
})
