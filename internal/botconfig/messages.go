package botconfig

import (
	"fmt"
	"os"
	"sync"

	"para-predict/internal/infra/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
)

// Messages holds every user-facing reply text plus the quick-reply labels
// and the welcome sticker. Loaded from messages.yml at startup and reloaded
// when the file changes.
type Messages struct {
	Welcome        string `yaml:"welcome"`
	Help           string `yaml:"help"`
	AskLocation    string `yaml:"ask_location"`
	LocationSaved  string `yaml:"location_saved"`
	LocationStored string `yaml:"location_stored"`
	NoLocation     string `yaml:"no_location"`
	InvalidDate    string `yaml:"invalid_date"`
	InvalidNumber  string `yaml:"invalid_number"`
	PredictResult  string `yaml:"predict_result"`
	PredictMissing string `yaml:"predict_missing"`
	PredictFailed  string `yaml:"predict_failed"`

	Labels struct {
		Predict       string `yaml:"predict"`
		MyLocation    string `yaml:"my_location"`
		Help          string `yaml:"help"`
		Start         string `yaml:"start"`
		StartFull     string `yaml:"start_full"`
		ShareLocation string `yaml:"share_location"`
	} `yaml:"labels"`

	Sticker struct {
		PackageID string `yaml:"package_id"`
		StickerID string `yaml:"sticker_id"`
	} `yaml:"sticker"`
}

func (m *Messages) validate() error {
	required := map[string]string{
		"welcome":               m.Welcome,
		"help":                  m.Help,
		"ask_location":          m.AskLocation,
		"location_saved":        m.LocationSaved,
		"location_stored":       m.LocationStored,
		"no_location":           m.NoLocation,
		"invalid_date":          m.InvalidDate,
		"invalid_number":        m.InvalidNumber,
		"predict_result":        m.PredictResult,
		"predict_missing":       m.PredictMissing,
		"predict_failed":        m.PredictFailed,
		"labels.predict":        m.Labels.Predict,
		"labels.my_location":    m.Labels.MyLocation,
		"labels.help":           m.Labels.Help,
		"labels.start":          m.Labels.Start,
		"labels.start_full":     m.Labels.StartFull,
		"labels.share_location": m.Labels.ShareLocation,
		"sticker.package_id":    m.Sticker.PackageID,
		"sticker.sticker_id":    m.Sticker.StickerID,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("messages config: %s is empty", key)
		}
	}
	return nil
}

// Provider hands out the current Messages snapshot and swaps it on reload.
type Provider struct {
	mu      sync.RWMutex
	path    string
	current *Messages
}

func Load(path string) (*Provider, error) {
	messages, err := readMessages(path)
	if err != nil {
		return nil, err
	}
	return &Provider{path: path, current: messages}, nil
}

func readMessages(path string) (*Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages config: %w", err)
	}

	messages := &Messages{}
	if err := yaml.Unmarshal(data, messages); err != nil {
		return nil, fmt.Errorf("parse messages config: %w", err)
	}

	if err := messages.validate(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (p *Provider) Get() *Messages {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Provider) Reload() error {
	messages, err := readMessages(p.path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = messages
	p.mu.Unlock()
	return nil
}

// Watch reloads the messages file on write events. A broken edit keeps the
// previous snapshot in place.
func (p *Provider) Watch(log *logger.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(p.path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					if err := p.Reload(); err != nil {
						log.Warn(fmt.Sprintf("Messages config not reloaded: %v", err))
					} else {
						log.Info("Messages config reloaded")
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn(fmt.Sprintf("Messages config watcher: %v", err))
			}
		}
	}()

	return watcher, nil
}
