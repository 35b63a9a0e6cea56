package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
)

// setEnv sets key until the current test ends. A production env skips the
// .env files so the working directory does not leak into these tests.
func setEnv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		setEnv("OPINION_ENV", "production")
	})

	It("applies defaults", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("REDIS_URL", "")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.IsProduction()).To(BeTrue())
		Expect(cfg.Lock.Backend).To(Equal(config.LockBackendLocal))
		Expect(cfg.Lock.Wait).To(Equal(30 * time.Second))
		Expect(cfg.Pipeline.RedisConsumer).To(Equal("server"))
		Expect(cfg.Oracle.MaxAttempts).To(Equal(2))
		Expect(cfg.Meili.Enabled()).To(BeFalse())
	})

	It("lets per-oracle settings override the shared LLM settings", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("LLM_API_KEY", "shared")
		setEnv("MATCHER_LLM_PROVIDER", "anthropic")
		setEnv("MATCHER_LLM_MODEL", "claude-sonnet-4-5")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.ClassifierLLM.Provider).To(Equal("openai"))
		Expect(cfg.ClassifierLLM.Enabled()).To(BeTrue())
		Expect(cfg.MatcherLLM.Provider).To(Equal("anthropic"))
		Expect(cfg.MatcherLLM.APIKey).To(Equal("shared"))
		Expect(cfg.MatcherLLM.Model).To(Equal("claude-sonnet-4-5"))
	})

	It("rejects an unknown store driver", func() {
		setEnv("STORE_DRIVER", "sqlite")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("STORE_DRIVER")))
	})

	It("requires redis for the redis lock backend", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("ROOM_LOCK_BACKEND", "redis")
		setEnv("REDIS_URL", "")

		_, err := config.Load(config.ServiceTypeWorker)
		Expect(err).To(MatchError(ContainSubstring("REDIS_URL")))
	})

	It("defaults the lock backend to redis when redis is configured", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("REDIS_URL", "redis://localhost:6379/0")

		cfg, err := config.Load(config.ServiceTypeWorker)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Lock.Backend).To(Equal(config.LockBackendRedis))
	})

	It("rejects a local lock backend for the worker", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("REDIS_URL", "redis://localhost:6379/0")
		setEnv("ROOM_LOCK_BACKEND", "local")

		_, err := config.Load(config.ServiceTypeWorker)
		Expect(err).To(MatchError(ContainSubstring("ROOM_LOCK_BACKEND=redis")))

		_, err = config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
	})

	It("parses durations", func() {
		setEnv("STORE_DRIVER", "memory")
		setEnv("ORACLE_TIMEOUT", "3s")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Oracle.Timeout).To(Equal(3 * time.Second))
	})
})
