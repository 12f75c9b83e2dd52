package alert

import (
	"github.com/gen2brain/beeep"
)

// Notifier delivers a triggered alert to the user. Both channels are best
// effort: the OS may refuse notifications and audio may be unavailable, and
// neither failure may stop the trigger flow.
type Notifier interface {
	Notify(title, body string) error
	Beep() error
}

// DesktopNotifier sends native OS notifications and an alert sound through
// beeep. Either channel can be disabled by config.
type DesktopNotifier struct {
	Desktop bool
	Sound   bool
}

func NewDesktopNotifier(desktop, sound bool) *DesktopNotifier {
	return &DesktopNotifier{Desktop: desktop, Sound: sound}
}

func (n *DesktopNotifier) Notify(title, body string) error {
	if !n.Desktop {
		return nil
	}
	return beeep.Notify(title, body, "")
}

func (n *DesktopNotifier) Beep() error {
	if !n.Sound {
		return nil
	}
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}
