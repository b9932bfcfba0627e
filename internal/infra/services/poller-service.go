package services

import (
	"context"
	"fmt"
	"time"
	"whatsapp-gateway-client/internal/domain/entities"
	"whatsapp-gateway-client/internal/infra/logger"
	"whatsapp-gateway-client/internal/infra/provider"

	"github.com/sirupsen/logrus"
)

const minPollInterval = 100 * time.Millisecond

type MessageHandler func(msg entities.Message)

// PollerService drains the gateway queue at the cadence configured on the
// provider. Fetching is consuming: every message returned is handed to
// Handler exactly once and is gone from the gateway.
type PollerService struct {
	Logger   *logger.Logger
	Provider provider.IGatewayProvider
	Handler  MessageHandler

	buf [provider.MaxMessages]entities.Message
}

func NewPollerService(logger *logger.Logger, gatewayProvider provider.IGatewayProvider, handler MessageHandler) *PollerService {
	if handler == nil {
		handler = LogMessage(logger)
	}
	return &PollerService{Logger: logger, Provider: gatewayProvider, Handler: handler}
}

// LogMessage is the default handler: it only records the message.
func LogMessage(log *logger.Logger) MessageHandler {
	return func(msg entities.Message) {
		log.Info(fmt.Sprintf("Message received from %s", msg.From), logrus.Fields{
			"message_id": msg.ID,
			"text":       msg.Text,
			"timestamp":  msg.Timestamp,
		})
	}
}

// PollOnce fetches one batch and dispatches it. It returns the batch size.
func (th *PollerService) PollOnce() int {
	count := th.Provider.GetMessages(th.buf[:])

	for i := 0; i < count; i++ {
		th.dispatch(th.buf[i])
		th.buf[i] = entities.Message{}
	}

	if count > 0 {
		th.Logger.Debug(fmt.Sprintf("Dispatched %d messages", count))
	}
	return count
}

// Run polls until ctx is done. A full batch is followed by an immediate poll
// since more messages are likely queued; otherwise it waits PollInterval,
// re-read every cycle.
func (th *PollerService) Run(ctx context.Context) {
	th.Logger.Info("Poller started")

	for {
		wait := th.interval()
		if th.PollOnce() == provider.MaxMessages {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			th.Logger.Info("Poller stopped")
			return
		case <-timer.C:
		}
	}
}

func (th *PollerService) interval() time.Duration {
	interval := th.Provider.PollInterval()
	if interval < minPollInterval {
		return minPollInterval
	}
	return interval
}

func (th *PollerService) dispatch(msg entities.Message) {
	defer func() {
		if r := recover(); r != nil {
			th.Logger.Error(fmt.Sprintf("Recovered from panic in message handler: %v", r))
		}
	}()

	th.Handler(msg)
}
