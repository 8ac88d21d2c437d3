// Package metrics registra las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Sesión
	loginsTotal             *prometheus.CounterVec
	refreshTotal            *prometheus.CounterVec
	logoutsTotal            prometheus.Counter
	revocationParseFailures *prometheus.CounterVec
	rateLimitRejectsTotal   *prometheus.CounterVec
)

// Register inicializa las métricas en el registry dado (default: global)
// y devuelve el handler para /metrics. Es idempotente.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Logins sociales por proveedor y resultado",
		}, []string{"provider", "result"})

		refreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refresh_total",
			Help: "Refresh de sesión por resultado",
		}, []string{"result"})

		logoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Logouts procesados",
		})

		revocationParseFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_revocation_parse_failures_total",
			Help: "Tokens que la lista de revocación no pudo verificar",
		}, []string{"op"}) // op: revoke|check

		rateLimitRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_rejects_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"path"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			loginsTotal, refreshTotal, logoutsTotal, revocationParseFailures, rateLimitRejectsTotal,
		} {
			if err := registerCollector(reg, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if g, ok := reg.(prometheus.Gatherer); ok && reg != prometheus.DefaultRegisterer {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ObserveHTTP registra un request terminado.
func ObserveHTTP(method, path string, status int, d time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	method = strings.ToUpper(method)
	p := NormalizePath(path)
	httpRequestDuration.WithLabelValues(method, p).Observe(d.Seconds())
	httpRequestsTotal.WithLabelValues(method, p, strconv.Itoa(status)).Inc()
}

// TrackInflight incrementa el gauge de requests en vuelo y retorna la función que lo decrementa.
func TrackInflight(method, path string) func() {
	if httpInflight == nil {
		return func() {}
	}
	g := httpInflight.WithLabelValues(strings.ToUpper(method), NormalizePath(path))
	g.Inc()
	return g.Dec
}

// RecordLogin registra un intento de login. result: ok|error.
func RecordLogin(provider, result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(provider, result).Inc()
	}
}

// RecordRefresh registra un refresh. result: ok|invalid|error.
func RecordRefresh(result string) {
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(result).Inc()
	}
}

// RecordLogout registra un logout.
func RecordLogout() {
	if logoutsTotal != nil {
		logoutsTotal.Inc()
	}
}

// RecordRevocationParseFailure registra un token no verificable en la lista de revocación.
func RecordRevocationParseFailure(op string) {
	if revocationParseFailures != nil {
		revocationParseFailures.WithLabelValues(op).Inc()
	}
}

// RecordRateLimitReject registra un rechazo por rate limit.
func RecordRateLimitReject(path string) {
	if rateLimitRejectsTotal != nil {
		rateLimitRejectsTotal.WithLabelValues(NormalizePath(path)).Inc()
	}
}

var (
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (ids, tokens) por ":param"
// para acotar la cardinalidad de las labels.
func NormalizePath(p string) string {
	clean, _, _ := strings.Cut(p, "?")
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.ParseInt(seg, 10, 64)
	return err == nil
}
