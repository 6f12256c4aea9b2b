// Package report lays a chat summary and its charts out as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/emoji"
	"github.com/go-pdf/fpdf"
)

const (
	Title = "WhatsApp Chat Analysis Report"

	margin      = 12.7 // half an inch, in mm
	lineH       = 6.0
	maxImageH   = 110.0
	utf8Family  = "body"
	coreFamily  = "Helvetica"
	imageFormat = "PNG"
)

type Options struct {
	// FontPath is a TTF used for all text. Without it the core Helvetica
	// font is used and characters outside Latin-1 are dropped.
	FontPath string
}

type writer struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	width  float64 // usable width
}

// Write renders the report for s with the given chart images to w.
func Write(w io.Writer, s *analyze.Summary, images []chart.Image, opts Options) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("chatlens", true)

	rw := &writer{pdf: pdf, family: coreFamily, tr: latin1(pdf)}
	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return fmt.Errorf("read report font: %w", err)
		}
		pdf.AddUTF8FontFromBytes(utf8Family, "", data)
		pdf.AddUTF8FontFromBytes(utf8Family, "B", data)
		rw.family = utf8Family
		rw.tr = stripEmoji
	}
	pageW, _ := pdf.GetPageSize()
	rw.width = pageW - 2*margin

	pdf.AddPage()
	rw.document(s, images)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path.
func WriteFile(path string, s *analyze.Summary, images []chart.Image, opts Options) error {
	var buf bytes.Buffer
	if err := Write(&buf, s, images, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (w *writer) document(s *analyze.Summary, images []chart.Image) {
	w.font("B", 20)
	w.pdf.CellFormat(w.width, 12, w.tr(Title), "", 1, "C", false, 0, "")
	w.pdf.Ln(4)

	w.font("", 11)
	w.text(fmt.Sprintf("User: %s", s.User))
	w.text(fmt.Sprintf("Date Range: %s to %s", s.From, s.To))
	w.pdf.Ln(4)

	w.heading("Top Statistics")
	w.bullet("Total Messages", fmt.Sprint(s.Stats.Messages))
	w.bullet("Total Words", fmt.Sprint(s.Stats.Words))
	w.bullet("Media Shared", fmt.Sprint(s.Stats.Media))
	w.bullet("Links Shared", fmt.Sprint(s.Stats.Links))
	w.bullet("Average Message Length", fmt.Sprintf("%.2f characters", s.AvgLength))
	if s.IsOverall() && len(s.BusyUsers) > 0 {
		w.bullet("Most Active User", s.BusyUsers[0].Label)
	}
	w.pdf.Ln(4)

	for _, img := range images {
		w.image(img)
	}

	if len(s.Personality) > 0 {
		w.heading("Personality Summary")
		for _, p := range s.Personality {
			w.bullet(p.User, strings.Join(p.Tags, ", "))
		}
		w.pdf.Ln(4)
	}

	w.heading("Chat Insights")
	for _, l := range s.Insights.Lines() {
		w.text("- " + l)
	}
}

func (w *writer) font(style string, size float64) {
	w.pdf.SetFont(w.family, style, size)
}

func (w *writer) heading(title string) {
	w.font("B", 14)
	w.pdf.CellFormat(w.width, 9, w.tr(title), "", 1, "L", false, 0, "")
	w.font("", 11)
}

func (w *writer) text(s string) {
	w.pdf.MultiCell(w.width, lineH, w.tr(s), "", "L", false)
}

func (w *writer) bullet(label, value string) {
	w.text(fmt.Sprintf("- %s: %s", label, value))
}

// image places a chart at full width, scaled down to keep it under
// maxImageH. Images are registered from memory.
func (w *writer) image(img chart.Image) {
	opts := fpdf.ImageOptions{ImageType: imageFormat}
	info := w.pdf.RegisterImageOptionsReader(img.Name, opts, bytes.NewReader(img.PNG))
	if info == nil || info.Width() == 0 {
		return
	}
	iw := w.width
	ih := iw * info.Height() / info.Width()
	if ih > maxImageH {
		iw, ih = iw*maxImageH/ih, maxImageH
	}

	// keep the caption on the same page as its image
	_, pageH := w.pdf.GetPageSize()
	if w.pdf.GetY()+9+ih > pageH-margin {
		w.pdf.AddPage()
	}
	w.heading(img.Title)
	x := margin + (w.width-iw)/2
	w.pdf.ImageOptions(img.Name, x, w.pdf.GetY(), iw, ih, true, opts, 0, "")
	w.pdf.Ln(6)
}

// latin1 drops emoji and characters the core fonts cannot encode, then
// converts to the cp1252 encoding they use.
func latin1(pdf *fpdf.Fpdf) func(string) string {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(s string) string {
		s = strings.Map(func(r rune) rune {
			if r > unicode.MaxLatin1 {
				return -1
			}
			return r
		}, s)
		return tr(strings.TrimSpace(s))
	}
}

// stripEmoji removes emoji, which TTF text fonts rarely carry.
func stripEmoji(s string) string {
	for _, e := range emoji.List(s) {
		s = strings.ReplaceAll(s, e, "")
	}
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
