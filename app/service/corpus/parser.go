// Package corpus turns quiz-bank documents into question/answer pairs.
package corpus

import (
	"errors"
	"iter"
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// ErrMalformedDocument reports a document whose question and answer counts
// differ. Pairing is truncated to the shorter list.
var ErrMalformedDocument = errors.New("malformed corpus document")

const blockDelimiter = "\n\n"

var blankRun = regexp.MustCompile(`\n{3,}`)

type Parser struct {
	question *regexp.Regexp
	answer   *regexp.Regexp
	picture  string
}

func NewParser(questionPattern, answerPattern, pictureIndicator string) (*Parser, error) {
	question, err := regexp.Compile(questionPattern)
	if err != nil {
		return nil, oops.In("corpus").With("pattern", questionPattern).Wrapf(err, "invalid question pattern")
	}

	answer, err := regexp.Compile(answerPattern)
	if err != nil {
		return nil, oops.In("corpus").With("pattern", answerPattern).Wrapf(err, "invalid answer pattern")
	}

	if pictureIndicator == "" {
		return nil, oops.In("corpus").Errorf("picture indicator must not be empty")
	}

	return &Parser{question: question, answer: answer, picture: pictureIndicator}, nil
}

// Document is the parsed content of one source file.
type Document struct {
	Name      string
	questions []string
	answers   []string
}

// Pairs yields (question, answer) in document order.
func (d *Document) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i := range d.Len() {
			if !yield(d.questions[i], d.answers[i]) {
				return
			}
		}
	}
}

// Len is the number of complete pairs.
func (d *Document) Len() int {
	return min(len(d.questions), len(d.answers))
}

// Err is non-nil when questions and answers did not pair up evenly.
func (d *Document) Err() error {
	if len(d.questions) == len(d.answers) {
		return nil
	}

	return oops.
		In("corpus").
		Code("malformed_document").
		With("document", d.Name).
		With("questions", len(d.questions)).
		With("answers", len(d.answers)).
		Wrap(ErrMalformedDocument)
}

func (p *Parser) Parse(name, content string) *Document {
	doc := &Document{Name: name}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = blankRun.ReplaceAllString(content, blockDelimiter)
	blocks := strings.Split(content, blockDelimiter)

	for i := 0; i < len(blocks); i++ {
		block := blocks[i]

		if strings.Contains(block, p.picture) {
			// the next block holds the answer to the dropped question
			i++
			continue
		}

		if text, ok := stripMarker(p.question, block); ok {
			doc.questions = append(doc.questions, text)
		} else if text, ok := stripMarker(p.answer, block); ok {
			doc.answers = append(doc.answers, text)
		}
	}

	return doc
}

// stripMarker removes marker from the start of block.
func stripMarker(marker *regexp.Regexp, block string) (string, bool) {
	loc := marker.FindStringIndex(block)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return block[loc[1]:], true
}
