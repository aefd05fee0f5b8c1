package scan

import (
	"testing"
)

func TestMentionsBareAndBracketed(t *testing.T) {
	content := "@Elena woke early.\n@[John Smith] arrived before @Elena did.\nLater @Elena left.\n"
	got := Mentions(content)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	want := []RawMention{
		{Name: "Elena", Line: 1, Column: 0},
		{Name: "John Smith", Line: 2, Column: 0},
		{Name: "Elena", Line: 2, Column: 29},
		{Name: "Elena", Line: 3, Column: 6},
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("mention[%d] = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestMentionsBracketedNotDoubleCounted(t *testing.T) {
	got := Mentions("@[John Smith] spoke.\n")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (bare scan must skip bracketed span)", len(got))
	}
	if got[0].Name != "John Smith" {
		t.Errorf("name = %q", got[0].Name)
	}
}

func TestMentionsCaseSensitive(t *testing.T) {
	got := Mentions("@elena and @Elena are different.\n")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name == got[1].Name {
		t.Error("case variants must stay distinct")
	}
}

func TestMentionsPrefixNotMatched(t *testing.T) {
	got := Mentions("@Elena met @Elenalike twice.\n")
	names := map[string]int{}
	for _, m := range got {
		names[m.Name]++
	}
	if names["Elena"] != 1 || names["Elenalike"] != 1 {
		t.Errorf("names = %v, want Elena:1 Elenalike:1", names)
	}
}

func TestMentionsEmptyBracketIgnored(t *testing.T) {
	got := Mentions("@[] is not a mention.\n")
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestMentionsSourceOrder(t *testing.T) {
	got := Mentions("@Zed then @[Aaron Apple] on one line.\n")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "Zed" || got[1].Name != "Aaron Apple" {
		t.Errorf("order = [%s, %s], want source order", got[0].Name, got[1].Name)
	}
}
