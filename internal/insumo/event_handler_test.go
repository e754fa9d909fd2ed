package insumo_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Stock Event Handler", func() {
	var (
		bus *events.EventBus
		m   *metrics.Metrics
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		m = metrics.NewMetrics(prometheus.NewRegistry())
		insumo.NewStockEventHandler(5, m, logger).RegisterEventHandlers(bus)
	})

	It("tracks the last published stock per insumo", func() {
		Expect(bus.PublishSync(context.Background(), events.NewStockChangedEvent(1, 9, 20, 20))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewStockChangedEvent(1, 9, -1, 19))).To(Succeed())

		Expect(testutil.ToFloat64(m.InsumoStock.WithLabelValues("1", "9"))).To(Equal(19.0))
	})

	It("rejects foreign event payloads", func() {
		h := insumo.NewStockEventHandler(0, nil, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4})))
		err := h.HandleStockChanged(context.Background(), events.NewAccessChangedEvent(1, "role.created"))
		Expect(err).To(HaveOccurred())
	})
})
