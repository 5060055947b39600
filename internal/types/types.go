package types

import (
	"encoding/json"
	"time"
)

// Article is what a content source produces: a title and a plain-text body.
type Article struct {
	Source string
	Title  string
	Body   string
}

// SubtitleSegment is a caption window with estimated timing.
type SubtitleSegment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type subtitleSegmentJSON struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
}

func (s SubtitleSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(subtitleSegmentJSON{StartSec: s.Start.Seconds(), EndSec: s.End.Seconds(), Text: s.Text})
}

func (s *SubtitleSegment) UnmarshalJSON(b []byte) error {
	var v subtitleSegmentJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.Start = time.Duration(v.StartSec * float64(time.Second))
	s.End = time.Duration(v.EndSec * float64(time.Second))
	s.Text = v.Text
	return nil
}

type Highlight struct {
	Index     int
	Start     time.Duration
	End       time.Duration
	Text      string
	InfoScore float64
	HookScore float64
}

// Utterance is one request to a speech engine.
type Utterance struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

type SpeechEventKind string

const (
	SpeechStart    SpeechEventKind = "start"
	SpeechEnd      SpeechEventKind = "end"
	SpeechError    SpeechEventKind = "error"
	SpeechBoundary SpeechEventKind = "boundary"
)

type SpeechEvent struct {
	Kind        SpeechEventKind `json:"event"`
	UtteranceID string          `json:"id"`
	CharIndex   int             `json:"charIndex,omitempty"`
	Err         string          `json:"error,omitempty"`
}

type Manifest struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Sources           []string            `json:"sources"`
	Language          string              `json:"language,omitempty"`
	Rate              float64             `json:"rate"`
	EstimatedDuration string              `json:"estimated_duration"`
	Words             int                 `json:"words"`
	Script            string              `json:"script"`
	Segments          []SubtitleSegment   `json:"segments"`
	Highlights        []ManifestHighlight `json:"highlights"`
	Files             ManifestFiles       `json:"files"`
}

type ManifestHighlight struct {
	Segment   int     `json:"segment"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Text      string  `json:"text"`
	InfoScore float64 `json:"info_score"`
	HookScore float64 `json:"hook_score"`
}

type ManifestFiles struct {
	Script string `json:"script"`
	VTT    string `json:"vtt"`
	SRT    string `json:"srt"`
	ASS    string `json:"ass"`
}
