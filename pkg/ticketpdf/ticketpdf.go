package ticketpdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrBadImage reports that the supplied logo bytes are not a decodable image.
var ErrBadImage = errors.New("ticketpdf: logo is not a decodable image")

// LineItem is one row of the cost table on the rendered ticket.
type LineItem struct {
	Name  string
	Table string
	Price int64
}

type RenderInput struct {
	Code       string
	Logo       []byte
	EventName  string
	EventVenue string
	EventDate  time.Time
	Items      []LineItem
}

type Config struct {
	FontName       string
	FontSize       float64
	CurrencyPrefix string
}

type Option func(*Config)

func WithCurrencyPrefix(prefix string) Option {
	return func(c *Config) {
		c.CurrencyPrefix = prefix
	}
}

// Renderer produces the single-page ticket document. Rendering is
// deterministic: identical inputs yield identical bytes.
type Renderer struct {
	cfg Config
}

func NewRenderer(opts ...Option) *Renderer {
	cfg := Config{
		FontName:       "Courier",
		FontSize:       12,
		CurrencyPrefix: "KES.",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Renderer{cfg: cfg}
}

// Layout constants. One unit is a centimeter expressed in points; every
// absolute position is derived from percentages of the page dimensions plus
// the padding, never from hardcoded pixel offsets.
const (
	unit    = 72.0 / 2.54
	padding = 0.5 * unit

	nameFontSize = 24

	logoMaxWidthRatio  = 0.60
	logoMaxHeightRatio = 0.15

	qrSize = 2 * unit
)

type box struct {
	X, Y, W, H float64
}

type textLine struct {
	Text   string
	X, Y   float64
	Font   string
	Style  string
	Size   float64
	Dimmed bool
}

type tableLayout struct {
	X, Y      float64
	ColWidths [4]float64
	RowHeight float64
	Rows      [][4]string
	Height    float64
}

type layout struct {
	PageW, PageH float64
	QR           box
	Logo         box
	Lines        []textLine
	Table        tableLayout
	Banner       box
	TotalLine    textLine
}

// fitLogo scales (w, h) to honor both caps while preserving aspect ratio.
// Logos already inside both caps keep their natural size; oversized logos are
// shrunk by whichever cap binds first.
func fitLogo(w, h, maxW, maxH float64) (float64, float64) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}

	return w * scale, h * scale
}

func (r *Renderer) computeLayout(pdf *gofpdf.Fpdf, in RenderInput) (layout, error) {
	pageW, pageH := pdf.GetPageSize()

	l := layout{PageW: pageW, PageH: pageH}

	l.QR = box{
		X: pageW/2 - qrSize/2,
		Y: padding,
		W: qrSize,
		H: qrSize,
	}

	cfgImg, _, err := image.DecodeConfig(bytes.NewReader(in.Logo))
	if err != nil {
		return layout{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	logoW, logoH := fitLogo(
		float64(cfgImg.Width), float64(cfgImg.Height),
		logoMaxWidthRatio*pageW, logoMaxHeightRatio*pageH,
	)
	l.Logo = box{
		X: pageW/2 - logoW/2,
		Y: l.QR.Y + l.QR.H + padding,
		W: logoW,
		H: logoH,
	}

	leading := r.cfg.FontSize + 0.2*unit

	y := l.Logo.Y + l.Logo.H + 1.25*unit
	l.Lines = append(l.Lines, r.centeredLine(pdf, in.EventName, y, r.cfg.FontName, "", nameFontSize, false, pageW))

	y += nameFontSize
	l.Lines = append(l.Lines, r.centeredLine(pdf, in.EventVenue, y, "Helvetica", "B", r.cfg.FontSize, false, pageW))

	y += leading
	l.Lines = append(l.Lines, r.centeredLine(pdf, FormatEventDate(in.EventDate), y, r.cfg.FontName, "", r.cfg.FontSize, true, pageW))

	y += leading
	l.Lines = append(l.Lines, r.centeredLine(pdf, FormatEventTime(in.EventDate), y, r.cfg.FontName, "", r.cfg.FontSize, true, pageW))

	y += leading

	l.Table = r.computeTable(pdf, in.Items, y+2*unit+0.1*unit, pageW)

	bannerW := pageW / 2
	bannerH := r.cfg.FontSize + 0.5*unit
	l.Banner = box{
		X: pageW/2 - bannerW/2,
		Y: l.Table.Y + l.Table.Height + 0.5*unit,
		W: bannerW,
		H: bannerH,
	}

	total := int64(0)
	for _, item := range in.Items {
		total += item.Price
	}

	totalText := fmt.Sprintf("%s %d", r.cfg.CurrencyPrefix, total)
	l.TotalLine = r.centeredLine(pdf, totalText, l.Banner.Y+l.Banner.H/2+r.cfg.FontSize*0.35, "Helvetica", "B", r.cfg.FontSize, false, pageW)

	return l, nil
}

func (r *Renderer) centeredLine(pdf *gofpdf.Fpdf, text string, y float64, font, style string, size float64, dimmed bool, pageW float64) textLine {
	pdf.SetFont(font, style, size)
	width := pdf.GetStringWidth(text)

	return textLine{
		Text:   text,
		X:      pageW/2 - width/2,
		Y:      y,
		Font:   font,
		Style:  style,
		Size:   size,
		Dimmed: dimmed,
	}
}

func (r *Renderer) computeTable(pdf *gofpdf.Fpdf, items []LineItem, y, pageW float64) tableLayout {
	pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)

	rows := make([][4]string, 0, len(items)+1)
	rows = append(rows, [4]string{"#", "Ticket", "Table", "Amount"})

	maxNameWidth := 0.0
	for i, item := range items {
		if w := pdf.GetStringWidth(item.Name); w > maxNameWidth {
			maxNameWidth = w
		}

		rows = append(rows, [4]string{
			fmt.Sprintf("%d", i+1),
			item.Name,
			item.Table,
			fmt.Sprintf("%d", item.Price),
		})
	}

	maxWidth := pageW - 2*padding
	firstCol := 0.75 * unit
	lastCol := 2 * unit
	nameCol := maxNameWidth + 0.5*unit
	tableCol := maxWidth - (firstCol + nameCol + lastCol)

	rowHeight := r.cfg.FontSize + 12

	return tableLayout{
		X:         padding,
		Y:         y,
		ColWidths: [4]float64{firstCol, nameCol, tableCol, lastCol},
		RowHeight: rowHeight,
		Rows:      rows,
		Height:    float64(len(rows)) * rowHeight,
	}
}

// Render writes the ticket document for in to w. The document is a single
// page; content beyond the page is not paginated, callers cap line items to
// what fits.
func (r *Renderer) Render(w io.Writer, in RenderInput) error {
	pdf := gofpdf.New("P", "pt", "A5", "")
	// A pinned creation date and a sorted resource catalog keep identical
	// inputs byte-identical; without the sort, registered images are
	// emitted in map-iteration order.
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	l, err := r.computeLayout(pdf, in)
	if err != nil {
		return err
	}

	qrPNG, err := qrcode.Encode(in.Code, qrcode.Highest, 512)
	if err != nil {
		return fmt.Errorf("ticketpdf: encoding scan code: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("scan-code", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("scan-code", l.QR.X, l.QR.Y, l.QR.W, l.QR.H, false, opts, 0, "")

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Logo))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	logoType := "PNG"
	if format == "jpeg" {
		logoType = "JPG"
	}

	logoOpts := gofpdf.ImageOptions{ImageType: logoType}
	pdf.RegisterImageOptionsReader("logo", logoOpts, bytes.NewReader(in.Logo))
	pdf.ImageOptions("logo", l.Logo.X, l.Logo.Y, l.Logo.W, l.Logo.H, false, logoOpts, 0, "")

	for _, line := range l.Lines {
		r.drawLine(pdf, line)
	}

	r.drawTable(pdf, l.Table)

	pdf.SetFillColor(0, 26, 77)
	pdf.SetAlpha(0.1, "Normal")
	pdf.RoundedRect(l.Banner.X, l.Banner.Y, l.Banner.W, l.Banner.H, 0.1*unit, "1234", "F")
	pdf.SetAlpha(1, "Normal")

	r.drawLine(pdf, l.TotalLine)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("ticketpdf: %w", err)
	}

	return pdf.Output(w)
}

func (r *Renderer) drawLine(pdf *gofpdf.Fpdf, line textLine) {
	pdf.SetFont(line.Font, line.Style, line.Size)

	if line.Dimmed {
		pdf.SetTextColor(102, 102, 102)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Text(line.X, line.Y, line.Text)
	pdf.SetTextColor(0, 0, 0)
}

func (r *Renderer) drawTable(pdf *gofpdf.Fpdf, t tableLayout) {
	pdf.SetFont(r.cfg.FontName, "", r.cfg.FontSize)

	for rowIdx, row := range t.Rows {
		y := t.Y + float64(rowIdx)*t.RowHeight
		x := t.X

		header := rowIdx == 0
		if header {
			pdf.SetFillColor(0, 0, 51)
			pdf.SetTextColor(255, 255, 255)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		for colIdx, cell := range row {
			align := "L"
			switch colIdx {
			case 0:
				align = "C"
			case 3:
				align = "R"
			}

			pdf.SetXY(x, y)
			pdf.CellFormat(t.ColWidths[colIdx], t.RowHeight, cell, "", 0, align, header, 0, "")
			x += t.ColWidths[colIdx]
		}
	}

	pdf.SetTextColor(0, 0, 0)
}

var ordinalSuffixes = map[int64]string{1: "st", 2: "nd", 3: "rd"}

func ordinal(day int) string {
	d := int64(day)
	if d%100 >= 11 && d%100 <= 13 {
		return fmt.Sprintf("%dth", d)
	}
	if suffix, ok := ordinalSuffixes[d%10]; ok {
		return fmt.Sprintf("%d%s", d, suffix)
	}

	return fmt.Sprintf("%dth", d)
}

// FormatEventDate renders the long form used on tickets and in notification
// copy, e.g. "Saturday, June 3rd, 2023".
func FormatEventDate(t time.Time) string {
	return fmt.Sprintf("%s, %s %s, %d", t.Weekday(), t.Month(), ordinal(t.Day()), t.Year())
}

// FormatEventTime renders the clock time, e.g. "7:30 PM".
func FormatEventTime(t time.Time) string {
	return t.Format("3:04 PM")
}
