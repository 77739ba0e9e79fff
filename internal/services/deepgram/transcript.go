package deepgram

import (
	"encoding/json"
	"fmt"
	"strings"
)

type utterance struct {
	Speaker    int    `json:"speaker"`
	Transcript string `json:"transcript"`
}

type response struct {
	// Some response variants carry utterances at the top level instead
	// of under results.
	Utterances []utterance `json:"utterances"`
	Results    struct {
		Utterances []utterance `json:"utterances"`
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Paragraphs struct {
					Paragraphs []struct {
						Speaker   int `json:"speaker"`
						Sentences []struct {
							Text string `json:"text"`
						} `json:"sentences"`
					} `json:"paragraphs"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// FormatTranscript flattens a raw Deepgram response into speaker-labelled
// text. It prefers diarized utterances, falls back to paragraph sentences,
// and finally to the flat channel transcript. An empty string means the
// response carried no usable speech.
func FormatTranscript(raw []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parse transcription response: %w", err)
	}

	utterances := resp.Results.Utterances
	if len(utterances) == 0 {
		utterances = resp.Utterances
	}
	if len(utterances) > 0 {
		segments := make([]string, 0, len(utterances))
		for _, u := range utterances {
			text := strings.TrimSpace(u.Transcript)
			if text == "" {
				continue
			}
			segments = append(segments, fmt.Sprintf("[Speaker %d]: %s", u.Speaker, text))
		}
		if len(segments) > 0 {
			return strings.Join(segments, "\n\n"), nil
		}
	}

	if len(resp.Results.Channels) > 0 && len(resp.Results.Channels[0].Alternatives) > 0 {
		alt := resp.Results.Channels[0].Alternatives[0]

		if len(alt.Paragraphs.Paragraphs) > 0 {
			segments := make([]string, 0, len(alt.Paragraphs.Paragraphs))
			for _, p := range alt.Paragraphs.Paragraphs {
				texts := make([]string, 0, len(p.Sentences))
				for _, s := range p.Sentences {
					if t := strings.TrimSpace(s.Text); t != "" {
						texts = append(texts, t)
					}
				}
				if len(texts) == 0 {
					continue
				}
				segments = append(segments, fmt.Sprintf("[Speaker %d]: %s", p.Speaker, strings.Join(texts, " ")))
			}
			if len(segments) > 0 {
				return strings.Join(segments, "\n\n"), nil
			}
		}

		return strings.TrimSpace(alt.Transcript), nil
	}

	return "", nil
}
