package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
)

// ErrUnprocessable помечает сообщение, которое не будет обработано и при повторной доставке.
// Такое сообщение отклоняется без возврата в очередь.
var ErrUnprocessable = errors.New("unprocessable message")

// ConsumerMessage запускает потребителя очереди. Сообщения обрабатываются
// параллельно, не более 10 одновременно. Ошибка handler возвращает сообщение в очередь,
// кроме ErrUnprocessable.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					handleDelivery(log, d, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func handleDelivery(log *slog.Logger, d amqp.Delivery, handler func([]byte) error) {
	err := handler(d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrUnprocessable):
		log.Error("dropping unprocessable message", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Warn("handler failed, requeue", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
