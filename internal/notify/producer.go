package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
)

// Event kinds published for downstream notification delivery (sound,
// e-mail, push). Delivery and formatting are entirely the consumer's
// concern.
const (
	EventDepositSubmitted  = "deposit_submitted"
	EventDepositResolved   = "deposit_resolved"
	EventInvestmentMatured = "investment_matured"
)

type Event struct {
	Kind      string    `json:"kind"`
	UserID    int       `json:"user_id"`
	TxID      string    `json:"tx_id,omitempty"`
	Amount    float64   `json:"amount"`
	Bucket    string    `json:"bucket,omitempty"`
	Method    string    `json:"method,omitempty"`
	Status    string    `json:"status,omitempty"`
	Plan      string    `json:"plan,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes ledger events to kafka. A nil writer (no brokers
// configured) turns every publish into a no-op, so handlers never need to
// care whether events are enabled.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		zap.L().Info("kafka brokers not configured, notification events disabled")
		return &Producer{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
	}
	zap.L().Info("kafka producer initialized", zap.String("topic", topic))

	return &Producer{writer: writer}
}

func (p *Producer) DepositSubmitted(ctx context.Context, tx *domain.Transaction) {
	p.publish(ctx, Event{
		Kind:   EventDepositSubmitted,
		UserID: tx.UserID,
		TxID:   tx.ID.String(),
		Amount: domain.CentsToFloat(tx.Amount),
		Bucket: tx.Account,
		Method: tx.Method,
		Status: tx.Status,
	})
}

func (p *Producer) DepositResolved(ctx context.Context, tx *domain.Transaction) {
	p.publish(ctx, Event{
		Kind:   EventDepositResolved,
		UserID: tx.UserID,
		TxID:   tx.ID.String(),
		Amount: domain.CentsToFloat(tx.Amount),
		Bucket: tx.Account,
		Method: tx.Method,
		Status: tx.Status,
	})
}

func (p *Producer) InvestmentMatured(ctx context.Context, inv *domain.Investment, payout int64) {
	p.publish(ctx, Event{
		Kind:   EventInvestmentMatured,
		UserID: inv.UserID,
		Amount: domain.CentsToFloat(payout),
		Bucket: inv.SourceBucket,
		Plan:   inv.Plan,
	})
}

func (p *Producer) publish(ctx context.Context, event Event) {
	if p.writer == nil {
		return
	}
	event.Timestamp = time.Now()

	value, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("can't marshal event", zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("user_%d", event.UserID)),
		Value: value,
		Time:  event.Timestamp,
	})
	if err != nil {
		// Notification delivery is best-effort; the ledger is already
		// consistent by the time an event is published.
		zap.L().Error("can't publish event", zap.String("kind", event.Kind), zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	zap.L().Info("closing kafka producer")
	return p.writer.Close()
}
