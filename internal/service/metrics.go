package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"gin-gorm-auth/internal/domain"
)

const (
	opSignup = "signup"
	opLogin  = "login"
)

var authOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_outcomes_total",
		Help: "Signup and login outcomes by result code",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(authOutcomes)
}

// result 标签只用有限取值：ok / 业务错误码 / error
func observe(op string, err error) {
	result := "ok"
	if err != nil {
		if code, ok := domain.CodeOf(err); ok {
			result = string(code)
		} else {
			result = "error"
		}
	}
	authOutcomes.WithLabelValues(op, result).Inc()
}
