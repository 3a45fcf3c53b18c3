package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/kiwisport/clubboard/core"
)

// consoleService writes emails to stdout. DEV/TEST only.
type consoleService struct{}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() core.EmailService { return &consoleService{} }

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			fmt.Printf(
				"---------- EMAIL ----------\nTo: %s\nSubject: %s\n\n%s\n---------------------------\n",
				joinAddresses(msg.To), msg.Subject, msg.BodyStr,
			)
		}
	}
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}

// MockService records sent messages for assertions in tests.
type MockService struct {
	mu   sync.Mutex
	Sent []*core.EmailMessage
}

var _ core.EmailService = (*MockService)(nil)

func NewMockService() *MockService { return &MockService{} }

func (svc *MockService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			svc.Sent = append(svc.Sent, msg)
		}
	}
}
