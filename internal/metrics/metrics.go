// Package metrics регистрирует prometheus-метрики леджера рассрочек.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InstallmentsCreated — количество созданных покупок в рассрочку.
	InstallmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "installments",
		Name:      "created_total",
		Help:      "Number of installment purchases created.",
	})

	// PaymentsRegistered — количество зарегистрированных взносов.
	PaymentsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "installments",
		Name:      "payments_registered_total",
		Help:      "Number of installment payments registered.",
	})

	// ExpensesPosted — расходы, отправленные проходом по наступившим взносам.
	ExpensesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "installments",
		Name:      "expenses_posted_total",
		Help:      "Number of expenses posted for due installments.",
	})

	// PublishFailures — ошибки публикации расходов и уведомлений.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "installments",
		Name:      "publish_failures_total",
		Help:      "Number of failed expense or notification publications.",
	}, []string{"target"})

	// PersistFailures — ошибки записи коллекции в хранилище.
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "installments",
		Name:      "persist_failures_total",
		Help:      "Number of failed full rewrites of the installment collection.",
	})

	// ActiveInstallments — текущее число активных покупок.
	ActiveInstallments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "installments",
		Name:      "active",
		Help:      "Number of active installment purchases.",
	})
)
