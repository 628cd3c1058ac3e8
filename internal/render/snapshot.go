package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

const labelMax = 24

// WriteSVG draws s as an SVG document.
func WriteSVG(w io.Writer, s Scene) error {
	layout := buildLayout(s)

	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 12, layout.Width-32, int(headerH)-20, 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 36, truncate(s.Title, 60), fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 54, s.summary(), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, e := range layout.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:0.8", css(e.Stroke), e.Width))
	}
	for _, n := range layout.Nodes {
		border, width := colorBorder, 2.0
		if n.Marked {
			border, width = colorHighlight, 3
		}
		canvas.Circle(int(n.X), int(n.Y), int(n.Radius),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.0f", css(n.Fill), css(border), width))
		if s.Labels {
			canvas.Text(int(n.X), int(n.Y+n.Radius+14), truncate(n.ID, labelMax),
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorText)))
		}
	}
	canvas.End()
	return nil
}

// WritePNG draws s as a PNG image.
func WritePNG(w io.Writer, s Scene) error {
	layout := buildLayout(s)

	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 12, float64(layout.Width)-32, headerH-20, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(truncate(s.Title, 60), 32, 30, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(s.summary(), 32, 48, 0, 0.5)

	for _, e := range layout.Edges {
		dc.SetColor(e.Stroke)
		dc.SetLineWidth(e.Width)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}
	for _, n := range layout.Nodes {
		dc.SetColor(n.Fill)
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Fill()

		if n.Marked {
			dc.SetColor(colorHighlight)
			dc.SetLineWidth(3)
		} else {
			dc.SetColor(colorBorder)
			dc.SetLineWidth(2)
		}
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Stroke()

		if s.Labels {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(truncate(n.ID, labelMax), n.X, n.Y+n.Radius+10, 0.5, 0.5)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
