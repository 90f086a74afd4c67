package extractor

import "testing"

func TestCapturePDFPath(t *testing.T) {
	tests := []struct {
		name    string
		handler string
		want    string
		wantOK  bool
	}{
		{"plain", "fjs_Link_download('/docs/x.pdf')", "/docs/x.pdf", true},
		{"extra args", "fjs_Link_download('/a/b.pdf','dossie');return false;", "/a/b.pdf", true},
		{"not a pdf", "fjs_Link_download('/docs/x.doc')", "", false},
		{"uppercase extension", "fjs_Link_download('/docs/x.PDF')", "", false},
		{"empty argument", "fjs_Link_download('.pdf')", "", false},
		{"double quotes", `fjs_Link_download("/docs/x.pdf")`, "", false},
		{"other function", "mudapagina_link('/docs/x.pdf')", "", false},
		{"empty", "", "", false},
		{"pdf mid path", "fjs_Link_download('/docs/x.pdf.bak')", "", false},
		{"second call matches", "fjs_Link_download('/a.doc');fjs_Link_download('/b.pdf')", "/b.pdf", true},
		{"spaces kept", "fjs_Link_download('/docs/my file.pdf')", "/docs/my file.pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CapturePDFPath(tt.handler)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CapturePDFPath(%q) = (%q, %v), want (%q, %v)", tt.handler, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHandlerPattern_CustomFunction(t *testing.T) {
	re, err := handlerPattern("baixar.arquivo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := capture(re, "baixar.arquivo('/x.pdf')"); !ok || got != "/x.pdf" {
		t.Errorf("expected /x.pdf, got %q (ok=%v)", got, ok)
	}
	// The dot is literal, not a wildcard.
	if _, ok := capture(re, "baixarXarquivo('/x.pdf')"); ok {
		t.Error("expected no match when the marker differs")
	}
}
