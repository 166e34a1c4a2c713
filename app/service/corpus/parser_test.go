package corpus

import (
	"errors"
	"testing"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()

	p, err := NewParser(`^Вопрос.+\n`, `^Ответ.+\n`, "(pic:")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	return p
}

type pair struct {
	question, answer string
}

func collect(doc *Document) []pair {
	var pairs []pair
	for q, a := range doc.Pairs() {
		pairs = append(pairs, pair{q, a})
	}
	return pairs
}

func TestParse_DropsPictureQuestions(t *testing.T) {
	t.Parallel()

	content := "Вопрос 1\nQ1\n\nОтвет 1\nA1\n\nВопрос 2 (pic: x)\nQ2\n\nОтвет 2\nA2"
	doc := newTestParser(t).Parse("sample.txt", content)

	got := collect(doc)
	if len(got) != 1 || got[0] != (pair{"Q1", "A1"}) {
		t.Fatalf("pairs = %v, want [{Q1 A1}]", got)
	}
	if err := doc.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func TestParse_RealisticBlocks(t *testing.T) {
	t.Parallel()

	content := "Чемпионат:\nТестовый турнир\n\n" +
		"Вопрос 1:\nКто написал \"Евгения Онегина\"?\n\n" +
		"Ответ:\nПушкин (Александр Сергеевич).\n\n" +
		"Комментарий:\nКлассика.\n\n\n\n" +
		"Вопрос 2:\nСтолица Франции?\nПодумайте.\n\n" +
		"Ответ:\nПариж.\n"

	got := collect(newTestParser(t).Parse("chgk.txt", content))
	want := []pair{
		{"Кто написал \"Евгения Онегина\"?", "Пушкин (Александр Сергеевич)."},
		{"Столица Франции?\nПодумайте.", "Париж.\n"},
	}

	if len(got) != len(want) {
		t.Fatalf("pairs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pair %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParse_WindowsLineEndings(t *testing.T) {
	t.Parallel()

	content := "Вопрос 1:\r\nQ\r\n\r\nОтвет:\r\nA"
	got := collect(newTestParser(t).Parse("crlf.txt", content))
	if len(got) != 1 || got[0] != (pair{"Q", "A"}) {
		t.Fatalf("pairs = %v, want [{Q A}]", got)
	}
}

func TestParse_UnevenCountsTruncate(t *testing.T) {
	t.Parallel()

	content := "Вопрос 1:\nQ1\n\nОтвет:\nA1\n\nВопрос 2:\nQ2"
	doc := newTestParser(t).Parse("broken.txt", content)

	if doc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", doc.Len())
	}
	if err := doc.Err(); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("Err() = %v, want ErrMalformedDocument", err)
	}
}

func TestParse_MarkerMustStartBlock(t *testing.T) {
	t.Parallel()

	content := "Текст про Вопрос без маркера\nстрока\n\nВопрос 1:\nQ\n\nОтвет:\nA"
	got := collect(newTestParser(t).Parse("marker.txt", content))
	if len(got) != 1 || got[0] != (pair{"Q", "A"}) {
		t.Fatalf("pairs = %v, want [{Q A}]", got)
	}
}

func TestParse_PairsStopsEarly(t *testing.T) {
	t.Parallel()

	content := "Вопрос 1:\nQ1\n\nОтвет:\nA1\n\nВопрос 2:\nQ2\n\nОтвет:\nA2"
	doc := newTestParser(t).Parse("two.txt", content)

	count := 0
	for range doc.Pairs() {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("iterated %d pairs after break, want 1", count)
	}
}

func TestNewParser_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := NewParser(`(`, `^Ответ.+\n`, "(pic:"); err == nil {
		t.Fatal("expected error for invalid question pattern")
	}
	if _, err := NewParser(`^Вопрос.+\n`, `^Ответ.+\n`, ""); err == nil {
		t.Fatal("expected error for empty picture indicator")
	}
}
