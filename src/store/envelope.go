package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradeanalytics/src/model"
)

// CurrentVersion is the envelope version written by Encode.
const CurrentVersion = 2

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrMalformedSnapshot  = errors.New("malformed snapshot")
)

// Snapshot is a persisted trade set together with the files it came from.
type Snapshot struct {
	SavedAt   time.Time
	FileNames []string
	Trades    []model.Trade
}

// AddFileName records name as a source unless it is already listed.
func (s *Snapshot) AddFileName(name string) {
	if name == "" {
		return
	}
	for _, n := range s.FileNames {
		if n == name {
			return
		}
	}
	s.FileNames = append(s.FileNames, name)
}

type envelopeHeader struct {
	Version int `json:"version"`
}

// envelopeV1 held a single source file name.
type envelopeV1 struct {
	Version  int           `json:"version"`
	SavedAt  time.Time     `json:"savedAt"`
	FileName string        `json:"fileName"`
	Trades   []model.Trade `json:"trades"`
}

func (e envelopeV1) upgrade() envelopeV2 {
	names := []string{}
	if e.FileName != "" {
		names = append(names, e.FileName)
	}
	return envelopeV2{
		Version:   2,
		SavedAt:   e.SavedAt,
		FileNames: names,
		Trades:    e.Trades,
	}
}

type envelopeV2 struct {
	Version   int           `json:"version"`
	SavedAt   time.Time     `json:"savedAt"`
	FileNames []string      `json:"fileNames"`
	Trades    []model.Trade `json:"trades"`
}

func (e envelopeV2) snapshot() *Snapshot {
	s := &Snapshot{
		SavedAt:   e.SavedAt.UTC(),
		FileNames: e.FileNames,
		Trades:    e.Trades,
	}
	if s.FileNames == nil {
		s.FileNames = []string{}
	}
	for i := range s.Trades {
		s.Trades[i].EntryTime = s.Trades[i].EntryTime.UTC()
		s.Trades[i].ExitTime = s.Trades[i].ExitTime.UTC()
	}
	return s
}

// Decode reads an envelope of any known version and upgrades it to the
// current shape.
func Decode(data []byte) (*Snapshot, error) {
	var head envelopeHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	var current envelopeV2
	switch head.Version {
	case 1:
		var v1 envelopeV1
		if err := json.Unmarshal(data, &v1); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		current = v1.upgrade()
	case 2:
		if err := json.Unmarshal(data, &current); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.Version)
	}

	if current.Trades == nil {
		return nil, fmt.Errorf("%w: missing trade list", ErrMalformedSnapshot)
	}
	return current.snapshot(), nil
}

// Encode writes s as a current-version envelope.
func Encode(s Snapshot) ([]byte, error) {
	env := envelopeV2{
		Version:   CurrentVersion,
		SavedAt:   s.SavedAt.UTC(),
		FileNames: s.FileNames,
		Trades:    s.Trades,
	}
	if env.FileNames == nil {
		env.FileNames = []string{}
	}
	if env.Trades == nil {
		env.Trades = []model.Trade{}
	}
	return json.MarshalIndent(env, "", "  ")
}
