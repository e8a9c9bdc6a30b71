package ticketpdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngLogo(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 60, B: 120, A: 255})
		}
	}

	var buff bytes.Buffer
	require.NoError(t, png.Encode(&buff, img))

	return buff.Bytes()
}

func renderInput(t *testing.T, logo []byte) RenderInput {
	t.Helper()

	return RenderInput{
		Code:       "AB12CD",
		Logo:       logo,
		EventName:  "OSS Charity Gala 2023",
		EventVenue: "Emara Ole Sereni",
		EventDate:  time.Date(2023, time.June, 3, 19, 30, 0, 0, time.UTC),
		Items: []LineItem{
			{Name: "Jane Doe", Table: "Table 3", Price: 7000},
			{Name: "John Doe", Table: "Table 4", Price: 7000},
		},
	}
}

func TestFitLogo(t *testing.T) {
	maxW, maxH := 240.0, 90.0

	t.Run("small logos keep their natural size", func(t *testing.T) {
		w, h := fitLogo(100, 50, maxW, maxH)
		assert.Equal(t, 100.0, w)
		assert.Equal(t, 50.0, h)
	})

	t.Run("wide logo is bound by the width cap", func(t *testing.T) {
		w, h := fitLogo(1200, 300, maxW, maxH)
		assert.InDelta(t, maxW, w, 0.001)
		assert.InDelta(t, 60.0, h, 0.001)
		assert.LessOrEqual(t, h, maxH)
	})

	t.Run("tall logo is bound by the height cap", func(t *testing.T) {
		w, h := fitLogo(300, 1200, maxW, maxH)
		assert.InDelta(t, maxH, h, 0.001)
		assert.InDelta(t, 22.5, w, 0.001)
		assert.LessOrEqual(t, w, maxW)
	})

	t.Run("aspect ratio survives scaling", func(t *testing.T) {
		w, h := fitLogo(1000, 400, maxW, maxH)
		assert.InDelta(t, 1000.0/400.0, w/h, 0.001)
	})
}

func TestComputeLayout(t *testing.T) {
	r := NewRenderer()

	pdf := gofpdf.New("P", "pt", "A5", "")
	pdf.AddPage()

	in := renderInput(t, pngLogo(t, 200, 100))

	l, err := r.computeLayout(pdf, in)
	require.NoError(t, err)

	pageW, pageH := l.PageW, l.PageH

	t.Run("scan code sits top-centered", func(t *testing.T) {
		assert.InDelta(t, pageW/2, l.QR.X+l.QR.W/2, 0.001)
		assert.Equal(t, padding, l.QR.Y)
		assert.Equal(t, l.QR.W, l.QR.H)
	})

	t.Run("logo sits below the scan code within its caps", func(t *testing.T) {
		assert.Greater(t, l.Logo.Y, l.QR.Y+l.QR.H)
		assert.LessOrEqual(t, l.Logo.W, logoMaxWidthRatio*pageW)
		assert.LessOrEqual(t, l.Logo.H, logoMaxHeightRatio*pageH)
		assert.InDelta(t, pageW/2, l.Logo.X+l.Logo.W/2, 0.001)
	})

	t.Run("text lines are horizontally centered from measured widths", func(t *testing.T) {
		require.Len(t, l.Lines, 4)

		for _, line := range l.Lines {
			pdf.SetFont(line.Font, line.Style, line.Size)
			width := pdf.GetStringWidth(line.Text)
			assert.InDelta(t, pageW/2, line.X+width/2, 0.001, "line %q", line.Text)
		}

		assert.Equal(t, "OSS Charity Gala 2023", l.Lines[0].Text)
		assert.Equal(t, "Emara Ole Sereni", l.Lines[1].Text)
		assert.Equal(t, "Saturday, June 3rd, 2023", l.Lines[2].Text)
		assert.Equal(t, "7:30 PM", l.Lines[3].Text)
	})

	t.Run("table columns derive from the widest item name", func(t *testing.T) {
		pdf.SetFont("Courier", "", 12)

		maxNameWidth := 0.0
		for _, item := range in.Items {
			if w := pdf.GetStringWidth(item.Name); w > maxNameWidth {
				maxNameWidth = w
			}
		}

		assert.InDelta(t, 0.75*unit, l.Table.ColWidths[0], 0.001)
		assert.InDelta(t, maxNameWidth+0.5*unit, l.Table.ColWidths[1], 0.001)
		assert.InDelta(t, 2*unit, l.Table.ColWidths[3], 0.001)

		total := l.Table.ColWidths[0] + l.Table.ColWidths[1] + l.Table.ColWidths[2] + l.Table.ColWidths[3]
		assert.InDelta(t, pageW-2*padding, total, 0.001)
	})

	t.Run("banner is placed from the realized table height", func(t *testing.T) {
		assert.InDelta(t, float64(len(in.Items)+1)*l.Table.RowHeight, l.Table.Height, 0.001)
		assert.InDelta(t, l.Table.Y+l.Table.Height+0.5*unit, l.Banner.Y, 0.001)
		assert.Equal(t, "KES. 14000", l.TotalLine.Text)
	})
}

func TestRender(t *testing.T) {
	r := NewRenderer()

	t.Run("same input renders identical bytes", func(t *testing.T) {
		in := renderInput(t, pngLogo(t, 200, 100))

		var first bytes.Buffer
		require.NoError(t, r.Render(&first, in))
		assert.NotZero(t, first.Len())

		// Repeated renders exercise fresh map iteration orders in the
		// catalog; every one must match the first byte for byte.
		for i := 0; i < 8; i++ {
			var again bytes.Buffer
			require.NoError(t, r.Render(&again, in))
			require.Equal(t, first.Bytes(), again.Bytes())
		}
	})

	t.Run("undecodable logo fails with ErrBadImage", func(t *testing.T) {
		in := renderInput(t, []byte("definitely not an image"))

		err := r.Render(&bytes.Buffer{}, in)
		require.ErrorIs(t, err, ErrBadImage)
	})

	t.Run("both logo orientations render", func(t *testing.T) {
		wide := renderInput(t, pngLogo(t, 1200, 200))
		require.NoError(t, r.Render(&bytes.Buffer{}, wide))

		tall := renderInput(t, pngLogo(t, 200, 1200))
		require.NoError(t, r.Render(&bytes.Buffer{}, tall))
	})
}

func TestFormatEventDate(t *testing.T) {
	cases := []struct {
		day  int
		want string
	}{
		{1, "Thursday, June 1st, 2023"},
		{2, "Friday, June 2nd, 2023"},
		{3, "Saturday, June 3rd, 2023"},
		{4, "Sunday, June 4th, 2023"},
		{11, "Sunday, June 11th, 2023"},
		{13, "Tuesday, June 13th, 2023"},
		{21, "Wednesday, June 21st, 2023"},
		{22, "Thursday, June 22nd, 2023"},
		{30, "Friday, June 30th, 2023"},
	}

	for _, tc := range cases {
		got := FormatEventDate(time.Date(2023, time.June, tc.day, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, tc.want, got)
	}
}
