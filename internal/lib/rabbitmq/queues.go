package rabbitmq

// Обменники и ключи маршрутизации леджера рассрочек.
const (
	ExchangeLedger        = "ledger"
	ExchangeNotifications = "notifications"

	RoutingKeyExpense        = "expense"
	RoutingKeyInstallmentDue = "installment_due"

	QueueExpenses       = "ledger.expense"
	QueueInstallmentDue = "notification.installment_due"
)

// QueueConfig описывает очередь и её привязку к обменнику.
type QueueConfig struct {
	Exchange   string
	QueueName  string
	RoutingKey string
}

// GetLedgerQueues возвращает очереди, которые объявляет процесс леджера.
// Очередь расходов читает внешний журнал расходов.
func GetLedgerQueues() []QueueConfig {
	return append([]QueueConfig{
		{Exchange: ExchangeLedger, QueueName: QueueExpenses, RoutingKey: RoutingKeyExpense},
	}, GetNotificationQueues()...)
}

// GetNotificationQueues возвращает очереди уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{Exchange: ExchangeNotifications, QueueName: QueueInstallmentDue, RoutingKey: RoutingKeyInstallmentDue},
	}
}
