package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// NewConsumerGroup joins group reading from the newest offset: watchers only
// care about changes made after they started.
func NewConsumerGroup(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	defaultCfg.Consumer.Return.Errors = false

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs h over topics until ctx is done or the group is closed. A
// rebalance ends group.Consume, so it is called in a loop.
func Consume(ctx context.Context, group sarama.ConsumerGroup, h sarama.ConsumerGroupHandler, topics ...string) error {
	for {
		if err := group.Consume(ctx, topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errors.Wrap(err, "kafka consume")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
