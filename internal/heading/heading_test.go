package heading

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{"Ⅰ. 서론", Roman},
		{"Ⅱ 본론", Roman},
		{"Ⅲ", Roman},
		{"IV. 결론", Roman},
		{"  Ⅻ.결어", Roman},
		{"1. 첫번째", Numbered},
		{"12.요건", Numbered},
		{"3.", Numbered},
		{"(가) 세부", Parenthesized},
		{"(하) 마지막", Parenthesized},
		{"(1) 고의", Parenthesized},
		{"(12)과실", Parenthesized},
		{"제750조에 따라 불법행위", Body},
		{"제 3 항의 해석", Body},
		{"제2호", Body},
		{"3.5점을 부여", Body},
		{"2024.1.1. 선고", Body},
		{"I think so", Body},
		{"(거) 범위 밖", Body},
		{"가. 항목", Body},
		{"", Body},
		{"   ", Body},
		{"일반 문장입니다.", Body},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			if got := Detect(tc.line); got != tc.want {
				t.Errorf("Detect(%q): expected %v, got %v", tc.line, tc.want, got)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if Body.String() != "body" || Roman.String() != "roman" || Parenthesized.String() != "parenthesized" {
		t.Error("unexpected level names")
	}
	if Body.IsHeading() || !Numbered.IsHeading() {
		t.Error("unexpected IsHeading result")
	}
}

func TestAlphabetHasFourteenSymbols(t *testing.T) {
	if n := len([]rune(Alphabet)); n != 14 {
		t.Fatalf("expected 14 symbols, got %d", n)
	}
}

func TestSplitInline(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"no heading", "그냥 문장입니다", []string{"그냥 문장입니다"}},
		{"leading heading untouched", "Ⅰ. 서론 시작", []string{"Ⅰ. 서론 시작"}},
		{"indented heading untouched", "  1. 요건", []string{"  1. 요건"}},
		{"inline numbered", "서론을 마친다. 1. 요건", []string{"서론을 마친다.", "1. 요건"}},
		{"two inline items", "요건은 (1) 고의 (2) 과실", []string{"요건은", "(1) 고의", "(2) 과실"}},
		{"inline roman", "끝 Ⅱ. 본론", []string{"끝", "Ⅱ. 본론"}},
		{"citation token", "민법 제750조 적용", []string{"민법 제750조 적용"}},
		{"split citation", "민법 제 1. 항", []string{"민법 제 1. 항"}},
		{"decimal stays", "점수는 3.5 이다", []string{"점수는 3.5 이다"}},
		{"problem marker", "설문 1. 첫 문단", []string{"설문 1. 첫 문단"}},
		{"short problem marker", "문 2. 둘째 (1) 요건", []string{"문 2. 둘째", "(1) 요건"}},
		{"bracketed marker", "[문제 3. 셋째", []string{"[문제 3. 셋째"}},
		{"label mid-line splits", "이 문 1. 요건", []string{"이 문", "1. 요건"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitInline(tc.line)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("part[%d]: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestIsCitation(t *testing.T) {
	if !IsCitation("제750조") || !IsCitation(" 제 3 항") {
		t.Error("expected citations to be recognised")
	}
	if IsCitation("750조") {
		t.Error("expected bare article number not to be a citation")
	}
}
