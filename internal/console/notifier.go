package console

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier writes user notifications to a terminal stream.
type Notifier struct {
	lock sync.Mutex
	out  io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(title, message string) {
	zap.S().Named("notifier").Debugw("notification", "title", title, "message", message)

	n.lock.Lock()
	defer n.lock.Unlock()
	fmt.Fprintf(n.out, "%s: %s\n", title, message)
}
