package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultError = "error"

	// integrity failure reasons
	ReasonAddress  = "address"
	ReasonChecksum = "checksum"
)

// Collector 存储操作指标；nil Collector 的所有方法都是空操作
type Collector struct {
	Operations     *prometheus.CounterVec   // 操作总数（按操作和结果）
	Duration       *prometheus.HistogramVec // 操作耗时
	Integrity      *prometheus.CounterVec   // 完整性校验失败（按原因）
	Authentication prometheus.Counter       // 解密认证失败
	Format         prometheus.Counter       // 头部格式错误
	Lookup         prometheus.Counter       // 密钥查找失败
}

// NewCollector 在 reg 上注册存储指标
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"op", "result"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		Integrity: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integrity_failures_total",
				Help:      "Blobs whose content address or plaintext checksum did not match",
			},
			[]string{"reason"},
		),
		Authentication: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authentication_failures_total",
			Help:      "Ciphertexts that failed authenticated decryption",
		}),
		Format: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_failures_total",
			Help:      "Blobs with a malformed header",
		}),
		Lookup: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Secret key lookups that found no key",
		}),
	}
}

// Observe 记录一次操作的结果和耗时
func (c *Collector) Observe(op string, start time.Time, err error) {
	if c == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.Operations.WithLabelValues(op, result).Inc()
	c.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (c *Collector) IntegrityFailure(reason string) {
	if c == nil {
		return
	}
	c.Integrity.WithLabelValues(reason).Inc()
}

func (c *Collector) AuthenticationFailure() {
	if c == nil {
		return
	}
	c.Authentication.Inc()
}

func (c *Collector) FormatFailure() {
	if c == nil {
		return
	}
	c.Format.Inc()
}

func (c *Collector) LookupFailure() {
	if c == nil {
		return
	}
	c.Lookup.Inc()
}
