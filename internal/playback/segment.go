package playback

type SentenceType string

const (
	SentenceFirst  SentenceType = "FIRST"
	SentenceMiddle SentenceType = "MIDDLE"
	SentenceLast   SentenceType = "LAST"
)

type ContentType string

const (
	ContentAction ContentType = "ACTION"
	ContentText   ContentType = "TEXT"
	ContentFile   ContentType = "FILE"
)

// Segment is one unit of an utterance. FIRST and LAST are ACTION markers,
// MIDDLE segments carry spoken text or a path to pre-rendered audio.
type Segment struct {
	SentenceID   string       `json:"sentence_id"`
	SentenceType SentenceType `json:"sentence_type"`
	ContentType  ContentType  `json:"content_type"`
	Text         string       `json:"text,omitempty"`
	FilePath     string       `json:"file_path,omitempty"`

	// Temporary files are removed once the segment is emitted or discarded.
	Temporary bool `json:"-"`
}

func (s Segment) Validate() error {
	if s.SentenceID == "" {
		return InvalidPayload("segment has no sentence id")
	}

	switch s.SentenceType {
	case SentenceFirst, SentenceLast:
		if s.ContentType != ContentAction {
			return InvalidPayload("%s segment must be %s, got %s", s.SentenceType, ContentAction, s.ContentType)
		}
	case SentenceMiddle:
		switch s.ContentType {
		case ContentText:
			if s.Text == "" {
				return InvalidPayload("text segment is empty")
			}
		case ContentFile:
			if s.FilePath == "" {
				return InvalidPayload("file segment has no path")
			}
		default:
			return InvalidPayload("middle segment cannot be %s", s.ContentType)
		}
	default:
		return InvalidPayload("unknown sentence type %q", s.SentenceType)
	}
	return nil
}

func FirstSegment(sentenceID string) Segment {
	return Segment{SentenceID: sentenceID, SentenceType: SentenceFirst, ContentType: ContentAction}
}

func LastSegment(sentenceID string) Segment {
	return Segment{SentenceID: sentenceID, SentenceType: SentenceLast, ContentType: ContentAction}
}

func TextSegment(sentenceID, text string) Segment {
	return Segment{SentenceID: sentenceID, SentenceType: SentenceMiddle, ContentType: ContentText, Text: text}
}

func FileSegment(sentenceID, path, title string, temporary bool) Segment {
	return Segment{
		SentenceID:   sentenceID,
		SentenceType: SentenceMiddle,
		ContentType:  ContentFile,
		FilePath:     path,
		Text:         title,
		Temporary:    temporary,
	}
}

// Compose builds the ordered segments of one utterance:
// FIRST, the optional lead-in, the payload body, LAST.
func Compose(sentenceID string, p Payload) []Segment {
	segs := make([]Segment, 0, 4)
	segs = append(segs, FirstSegment(sentenceID))
	if p.LeadIn != "" {
		segs = append(segs, TextSegment(sentenceID, p.LeadIn))
	}
	switch {
	case p.FilePath != "":
		segs = append(segs, FileSegment(sentenceID, p.FilePath, p.Title, p.Temporary))
	case p.Text != "":
		segs = append(segs, TextSegment(sentenceID, p.Text))
	}
	segs = append(segs, LastSegment(sentenceID))
	return segs
}
