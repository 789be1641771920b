package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Handler procesa una venta recibida; lo implementa projection.Worker.
type Handler interface {
	Handle(ctx context.Context, saleID string) error
}

// Consumer grupo de consumo que entrega las ventas al Handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler Handler
	log     zerolog.Logger
}

// ConsumerConfig configuración del grupo de consumo.
func ConsumerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true
	return config
}

// NewConsumer conecta el grupo de consumo.
func NewConsumer(brokers []string, groupID, topic string, handler Handler, log zerolog.Logger) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(brokers, groupID, ConsumerConfig())
	if err != nil {
		return nil, fmt.Errorf("crear consumidor kafka: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("group_id", groupID).Str("topic", topic).Msg("consumidor kafka inicializado")
	return &Consumer{group: group, topics: []string{topic}, handler: handler, log: log}, nil
}

// Run consume hasta que se cancele ctx.
func (c *Consumer) Run(ctx context.Context) {
	go func() {
		for err := range c.group.Errors() {
			c.log.Error().Err(err).Msg("error del consumidor kafka")
		}
	}()
	h := &groupHandler{handler: c.handler, log: c.log}
	for {
		if err := c.group.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.Error().Err(err).Msg("consumo kafka interrumpido")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Close cierra el grupo.
func (c *Consumer) Close() error {
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

type groupHandler struct {
	handler Handler
	log     zerolog.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marca cada mensaje aunque falle: el barrido reencola las ventas sin salidas.
// Sale en cuanto termina la sesión para no retrasar un rebalanceo.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			_ = h.handleMessage(session.Context(), msg)
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) handleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	carrier := propagation.MapCarrier{}
	for _, header := range msg.Headers {
		key := string(header.Key)
		if key == "traceparent" || key == "tracestate" {
			carrier[key] = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	ctx, span := otel.Tracer("kafka-consumer").Start(ctx, "kafka.consume.sale_committed",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", msg.Topic),
			attribute.Int("messaging.kafka.partition", int(msg.Partition)),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	saleID, err := decodeSaleID(msg)
	if err != nil {
		span.SetStatus(codes.Error, "decode")
		h.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("mensaje de proyección descartado")
		return err
	}
	span.SetAttributes(attribute.String("sale.id", saleID))
	if err := h.handler.Handle(ctx, saleID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handle")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// decodeSaleID valida el tipo de evento y extrae el ID de venta.
func decodeSaleID(msg *sarama.ConsumerMessage) (string, error) {
	for _, header := range msg.Headers {
		if string(header.Key) == "event_type" && string(header.Value) != EventTypeSaleCommitted {
			return "", fmt.Errorf("tipo de evento desconocido: %s", header.Value)
		}
	}
	var event SaleCommittedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return "", fmt.Errorf("deserializar evento: %w", err)
	}
	if event.SaleID == "" {
		return "", errors.New("evento sin sale_id")
	}
	return event.SaleID, nil
}
