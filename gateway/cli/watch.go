package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/pkg/kafka"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print borrow record changes as they happen",
		Long: `Follow the borrow record events the gateway forwards to Kafka.

Needs KAFKA_ADDRS. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Kafka.Enabled() {
				return errors.New("watch needs KAFKA_ADDRS")
			}
			ctx, stop := signal.NotifyContext(context.WithoutCancel(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			group, err := kafka.NewConsumerGroup(a.cfg.Kafka, "bookhub-watch-"+uuid.NewString())
			if err != nil {
				return errors.Wrap(err, "kafka consumer group")
			}
			defer func() {
				if err := group.Close(); err != nil {
					a.log.Warn("close consumer group", zap.Error(err))
				}
			}()

			events, cancel := a.events.Subscribe(broker.TopicBorrowRecords, 16)
			defer cancel()

			src := broker.NewSource(a.events, a.log)
			errCh := make(chan error, 1)
			go func() {
				errCh <- kafka.Consume(ctx, group, src, a.cfg.Kafka.Topic)
			}()

			out := cmd.OutOrStdout()
			select {
			case <-src.Ready():
				fmt.Fprintln(out, a.term.Muted("Watching borrow records, Ctrl+C to stop"))
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return nil
			}
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					a.printEvent(out, ev)
				case err := <-errCh:
					return err
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}

func (a *App) printEvent(w io.Writer, ev broker.Event) {
	fmt.Fprintf(w, "%s  %s changed", ev.At.Local().Format(time.TimeOnly), ev.Topic)
	if len(ev.Records) > 0 {
		fmt.Fprintf(w, " (%d records)", len(ev.Records))
	}
	fmt.Fprintln(w)
	for _, rec := range ev.Records {
		state := "borrowed"
		if rec.Returned() {
			state = "returned " + rec.ReturnedAt.Human()
		}
		fmt.Fprintf(w, "  %-24s %-30s %s\n", truncateString(rec.ID, 24), truncateString(orDash(rec.BookTitle()), 30), state)
	}
}
