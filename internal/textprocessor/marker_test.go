package textprocessor

import "testing"

func TestFindReference(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOk bool
	}{
		{
			"attribute",
			`<?xml version='1.0' encoding='UTF-8'?><msg serviceID="35" templateID="1" action="viewMultiMsg" m_resid="abc/def" m_fileName="6A2C-4B1E" tSum="3">`,
			"6A2C-4B1E", true,
		},
		{
			"escaped_json",
			`{\"app\":\"com.tencent.multimsg\",\"meta\":{\"detail\":{\"news\":[],\"resid\":\"xyz\",\"uniseq\":\"u1\",\"filename\":\"B\"}}}`,
			"B", true,
		},
		{
			"attribute_first",
			`m_fileName="xml" \"filename\":\"json\"`,
			"xml", true,
		},
		{
			"json_first_in_text",
			`\"filename\":\"json\" m_fileName="xml"`,
			"xml", true,
		},
		{
			"unescaped_json_is_not_matched",
			`{"app":"com.tencent.multimsg","meta":{"detail":{"filename":"B"}}}`,
			"", false,
		},
		{
			"unterminated",
			`<msg m_fileName="never closed`,
			"", false,
		},
		{
			"empty_name",
			`<msg m_fileName="" />`,
			"", false,
		},
		{
			"empty_attribute_falls_back",
			`<msg m_fileName="" /> \"filename\":\"C\"`,
			"C", true,
		},
		{
			"repeated_attribute",
			`<msg m_fileName="first" /><item m_fileName="second" />`,
			"second", true,
		},
		{
			"repeated_escaped_json",
			`{\"filename\":\"first\",\"news\":[{\"filename\":\"second\"}]}`,
			"second", true,
		},
		{
			"empty_last_attribute",
			`<msg m_fileName="first" /><item m_fileName="" />`,
			"", false,
		},
		{
			"resid_only",
			`<msg m_resid="abc" />`,
			"", false,
		},
		{
			"nothing",
			"just a plain message",
			"", false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindReference(tt.raw)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("FindReference() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestExtractor_customOrder(t *testing.T) {
	raw := `<msg m_fileName="file" /> \"filename\":\"json\"`
	tests := []struct {
		name      string
		extractor *Extractor
		want      string
	}{
		{"json_first", NewExtractor(EscapedJSONGrammar, AttributeGrammar), "json"},
		{"attribute_first", NewExtractor(AttributeGrammar, EscapedJSONGrammar), "file"},
		{"none", NewExtractor(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := tt.extractor.Find(raw); got != tt.want {
				t.Errorf("Find() = %v, want %v", got, tt.want)
			}
		})
	}
}
