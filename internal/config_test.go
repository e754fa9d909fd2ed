package internal_test

import (
	"os"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			AllowedOrigins:    "http://localhost:3000, *",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			Source:       "postgres://localhost/registry",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "0123456789abcdef0123456789abcdef",
			AccessTokenDuration: 30 * time.Minute,
			BCryptCost:          10,
		},
		Observability: internal.ObservabilityConfig{
			Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
		MenuCache: internal.MenuCacheConfig{Enabled: true, Size: 128, TTL: time.Minute},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("reports every invalid section at once", func() {
		cfg := validConfig()
		cfg.Database.Source = ""
		cfg.Security.JWTSecret = "short"
		cfg.MenuCache.TTL = 0

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("database config"))
		Expect(err.Error()).To(ContainSubstring("security config"))
		Expect(err.Error()).To(ContainSubstring("menu cache config"))
	})

	It("ignores cache sizing when the cache is off", func() {
		cfg := validConfig()
		cfg.MenuCache = internal.MenuCacheConfig{}
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects an unknown log level", func() {
		cfg := validConfig()
		cfg.Observability.Logging.Level = "verbose"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("unknown log level")))
	})

	Describe("LoadConfigFromEnv", func() {
		BeforeEach(func() {
			for key, value := range map[string]string{
				"DB_SOURCE":                     "postgres://env/registry",
				"JWT_SECRET":                    "env-secret-env-secret-env-secret-00",
				"MENU_CACHE_TTL":                "90s",
				"INVENTORY_LOW_STOCK_THRESHOLD": "25",
				"HTTP_PORT":                     "not-a-number",
			} {
				Expect(os.Setenv(key, value)).To(Succeed())
				DeferCleanup(os.Unsetenv, key)
			}
		})

		It("reads overrides and falls back on malformed values", func() {
			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Database.Source).To(Equal("postgres://env/registry"))
			Expect(cfg.MenuCache.TTL).To(Equal(90 * time.Second))
			Expect(cfg.Inventory.LowStockThreshold).To(BeEquivalentTo(25))
			Expect(cfg.Server.Port).To(Equal(8080))
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
