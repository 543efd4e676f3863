package anthropic

import "testing"

func TestParseResponsePlainJSON(t *testing.T) {
	rec, err := parseResponse(`{"fix_type":"snap","confidence":0.72,"reasoning":"low accuracy gap","parameters":{"tolerance":0.5}}`)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if rec.FixKind != "snap" || rec.Confidence != 0.72 {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if rec.Parameters["tolerance"] != 0.5 {
		t.Fatalf("expected tolerance param to survive, got %+v", rec.Parameters)
	}
}

func TestParseResponseStripsMarkdownFence(t *testing.T) {
	content := "```json\n{\"fix_type\":\"trim\",\"confidence\":0.9,\"reasoning\":\"sliver\",\"parameters\":{}}\n```"
	rec, err := parseResponse(content)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if rec.FixKind != "trim" {
		t.Fatalf("expected fix kind trim, got %v", rec.FixKind)
	}
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	if _, err := parseResponse("not json at all"); err == nil {
		t.Fatal("expected an error for unparseable content")
	}
}
