package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cbegin/aonplay-go"
	"github.com/cbegin/aonplay-go/internal/tui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	windowW      = 1100
	windowH      = 720
	minWindowW   = 980
	minWindowH   = 680
	uiSampleRate = 48000
	scopeSize    = 1024

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale
)

var (
	bgColor          = color.RGBA{192, 192, 192, 255}
	panelColor       = color.RGBA{192, 192, 192, 255}
	borderColor      = color.RGBA{128, 128, 128, 255}
	buttonColor      = color.RGBA{192, 192, 192, 255}
	buttonPauseColor = color.RGBA{192, 192, 192, 255}
	highlightColor   = color.RGBA{0, 0, 128, 255}
	patternHint      = "Select an AON module to play."

	// 3D bevel colors for old-school embossed look.
	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}

	// Sunken panel / edit area interior.
	sunkenBgColor = color.RGBA{24, 24, 32, 255}

	sliderFillColor = color.RGBA{0, 0, 128, 255}
	channelColor    = color.RGBA{80, 200, 255, 220}
	mutedColor      = color.RGBA{60, 64, 80, 220}
)

var filterModels = []aonplay.FilterModel{
	aonplay.FilterNone,
	aonplay.FilterA500,
	aonplay.FilterA1200,
}

type navEntry struct {
	name  string
	path  string
	isDir bool
}

type game struct {
	player   *aonplay.Player
	events   <-chan aonplay.PlaybackEvent
	analyzer *analyzer
	scopeImg *ebiten.Image
	scopeW   int
	scopeH   int
	specBins []float64
	wavePeak float64
	chanBuf  []float32

	filterIdx int
	volume    float64
	stereoMix float64

	dragging int // 0=none, 1=volume, 2=stereo mix

	song *aonplay.Song

	playing bool
	paused  bool

	status    string
	statusErr bool

	cwd       string
	nav       []navEntry
	navScroll int

	loadedPath string

	frameTick        int
	lastNavPath      string
	lastNavClickTick int

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(initialPath string) (*game, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if initialPath != "" {
		cwd = filepath.Dir(initialPath)
	}

	g := &game{
		analyzer:  newAnalyzer(uiSampleRate),
		chanBuf:   make([]float32, scopeSize),
		volume:    1.0,
		stereoMix: 0.3,
		status:    "Ready",
		cwd:       cwd,
		textCache: make(map[string]*ebiten.Image, 1024),
		viewW:     windowW,
		viewH:     windowH,
	}
	if err := g.rebuildPlayer(); err != nil {
		return nil, err
	}
	if initialPath != "" {
		if err := g.loadFile(initialPath); err != nil {
			return nil, err
		}
		g.restartPlayback()
		return g, nil
	}
	if err := g.refreshNav(); err != nil {
		g.setError(err.Error())
	}
	return g, nil
}

func (g *game) Update() error {
	g.frameTick++
	g.pollEvents()
	g.handleMouse()
	g.handleKeys()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	l := g.layoutRects()

	g.drawSunkenPanel(screen, l.nav)
	g.drawDarkPanel(screen, l.channels)
	g.drawSunkenPanel(screen, l.pattern)
	g.drawDarkPanel(screen, l.spectrum)
	g.drawButton(screen, l.play, g.playButtonLabel(), g.playButtonColor())
	g.drawButton(screen, l.filter, "Filter "+filterModels[g.filterIdx].String(), buttonColor)
	g.drawSlider(screen, l.stereo, fmt.Sprintf("Mix %d%%", int(g.stereoMix*100+0.5)), 100, g.stereoMix)
	g.drawSlider(screen, l.volume, fmt.Sprintf("Vol %d%%", int(g.volume*100+0.5)), 130, g.volume)
	g.drawSunkenPanel(screen, l.status)

	g.drawText(screen, "Files", l.nav.Min.X+8, l.nav.Min.Y+8)

	g.drawNavigator(screen, l.nav)
	g.drawChannels(screen, l.channels)
	g.drawPattern(screen, l.pattern)
	g.drawSpectrum(screen, l.spectrum)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW < minWindowW {
		outsideW = minWindowW
	}
	if outsideH < minWindowH {
		outsideH = minWindowH
	}
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) Close() { _ = g.player.Stop() }

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			switch ev.Kind {
			case aonplay.EventPlaybackEnded:
				g.playing = false
				g.paused = false
				if !g.statusErr {
					g.status = "Playback ended"
				}
			case aonplay.EventLoopCompleted:
				if !g.statusErr {
					g.status = fmt.Sprintf("Playing (loop %d)", ev.Loop)
				}
			}
		default:
			return
		}
	}
}

func (g *game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePlayPause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.cycleFilter()
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.play):
			g.togglePlayPause()
			return
		case pointInRect(mx, my, l.filter):
			g.cycleFilter()
			return
		case pointInRect(mx, my, l.stereo):
			g.dragging = 2
			g.updateStereoFromMouse(mx, l.stereo)
			return
		case pointInRect(mx, my, l.volume):
			g.dragging = 1
			g.updateVolumeFromMouse(mx, l.volume)
			return
		case pointInRect(mx, my, l.nav):
			g.clickNavigator(my, l.nav)
			return
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = 0
	}
	switch g.dragging {
	case 1:
		g.updateVolumeFromMouse(mx, l.volume)
	case 2:
		g.updateStereoFromMouse(mx, l.stereo)
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.nav) {
		g.navScroll -= int(wy * 2)
		if g.navScroll < 0 {
			g.navScroll = 0
		}
	}
}

type uiLayout struct {
	nav, channels, pattern, spectrum image.Rectangle
	play, filter, stereo             image.Rectangle
	volume, status                   image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	w := max(g.viewW, minWindowW)
	h := max(g.viewH, minWindowH)

	pad := 20
	rowH := 44
	statusH := 40

	// Bottom: status row, then controls row above it.
	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH

	// Left column: nav + channel scopes.
	navW := 280
	chanH := 160
	navBottom := controlsTop - 12
	chanTop := navBottom - chanH
	navRect := image.Rect(pad, pad, pad+navW, chanTop-8)
	chanRect := image.Rect(pad, chanTop, pad+navW, navBottom)

	// Right column: pattern view + spectrum.
	rightX := navRect.Max.X + 12
	rightW := max(w-rightX-pad, 320)
	contentBottom := controlsTop - 12
	contentH := contentBottom - pad
	scopeH := min(max(int(float64(contentH)*0.28), 120), 260)
	patternRect := image.Rect(rightX, pad, rightX+rightW, contentBottom-scopeH-12)
	spectrumRect := image.Rect(rightX, patternRect.Max.Y+12, rightX+rightW, contentBottom)

	playRect := image.Rect(pad, controlsTop, pad+130, controlsTop+rowH)
	filterRect := image.Rect(pad+142, controlsTop, pad+350, controlsTop+rowH)
	stereoRect := image.Rect(pad+362, controlsTop, pad+600, controlsTop+rowH)
	volRight := min(pad+612+260, w-pad)
	volumeRect := image.Rect(pad+612, controlsTop, volRight, controlsTop+rowH)

	statusRect := image.Rect(pad, statusTop, w-pad, statusTop+statusH)

	return uiLayout{
		nav: navRect, channels: chanRect, pattern: patternRect, spectrum: spectrumRect,
		play: playRect, filter: filterRect, stereo: stereoRect,
		volume: volumeRect, status: statusRect,
	}
}

func (g *game) drawNavigator(screen *ebiten.Image, rect image.Rectangle) {
	label := g.cwd
	if g.loadedPath != "" {
		label = g.cwd + "  [" + filepath.Base(g.loadedPath) + "]"
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenMiddle(label, maxChars), rect.Min.X+8, rect.Min.Y+8+lineH)

	top := rect.Min.Y + 12 + (lineH * 2)
	maxLines := max(1, (rect.Dy()-(lineH*2)-18)/lineH)
	if g.navScroll > len(g.nav)-1 {
		g.navScroll = max(0, len(g.nav)-1)
	}

	for i := 0; i < maxLines; i++ {
		idx := g.navScroll + i
		if idx < 0 || idx >= len(g.nav) {
			break
		}
		entry := g.nav[idx]
		y := top + i*lineH
		if g.loadedPath != "" && !entry.isDir && samePath(entry.path, g.loadedPath) {
			ebitenutil.DrawRect(screen, float64(rect.Min.X+6), float64(y-2), float64(rect.Dx()-12), float64(lineH+2), highlightColor)
		}
		txt := entry.name
		if entry.isDir && entry.name != ".." {
			txt += "/"
		}
		g.drawText(screen, shortenEnd(txt, maxChars-1), rect.Min.X+10, y)
	}
}

// drawChannels draws one oscilloscope lane per voice from the engine's
// per-channel scope buffers.
func (g *game) drawChannels(screen *ebiten.Image, rect image.Rectangle) {
	if g.song == nil {
		return
	}
	st, ok := g.player.State()
	channels := g.song.Channels
	inner := image.Rect(rect.Min.X+6, rect.Min.Y+6, rect.Max.X-6, rect.Max.Y-6)
	laneH := inner.Dy() / channels
	if laneH < 4 {
		return
	}
	for ch := 0; ch < channels; ch++ {
		top := inner.Min.Y + ch*laneH
		mid := top + laneH/2
		ebitenutil.DrawRect(screen, float64(inner.Min.X), float64(mid), float64(inner.Dx()), 1, color.RGBA{40, 44, 58, 100})
		col := mutedColor
		if ok && ch < len(st.Channels) && st.Channels[ch].Playing {
			col = channelColor
		}
		n := g.player.Scope(ch, g.chanBuf)
		if n < 2 {
			continue
		}
		samples := g.chanBuf[:n]
		gain := float64(laneH/2 - 1)
		prevY := mid - int(float64(samples[0])*gain)
		for px := 1; px < inner.Dx(); px++ {
			si := min(px*n/inner.Dx(), n-1)
			y := mid - int(float64(samples[si])*gain)
			ebitenutil.DrawLine(screen, float64(inner.Min.X+px-1), float64(prevY), float64(inner.Min.X+px), float64(y), col)
			prevY = y
		}
	}
}

// drawPattern shows the rows around the one currently sounding.
func (g *game) drawPattern(screen *ebiten.Image, rect image.Rectangle) {
	top := rect.Min.Y + 12
	maxChars := max(8, (rect.Dx()-16)/charW)
	if g.song == nil {
		g.drawText(screen, shortenEnd(patternHint, maxChars), rect.Min.X+8, top+lineH)
		return
	}
	title := strings.TrimSpace(g.song.Title)
	if title == "" {
		title = filepath.Base(g.loadedPath)
	}
	st, ok := g.player.State()
	if !ok {
		st = aonplay.State{Pattern: g.song.PatternAt(0), Speed: 6, Tempo: 125}
	}
	led := "off"
	if st.Filter {
		led = "on"
	}
	header := fmt.Sprintf("%s  pos %02d/%02d pat %02d spd %d bpm %d led %s",
		title, st.Position, g.song.NumPositions(), st.Pattern, st.Speed, st.Tempo, led)
	g.drawText(screen, shortenEnd(header, maxChars), rect.Min.X+8, top)

	rowsTop := top + lineH + 6
	maxLines := max(1, (rect.Dy()-lineH-24)/lineH)
	first := st.Row - maxLines/2
	for i := 0; i < maxLines; i++ {
		row := first + i
		if row < 0 || row >= 64 {
			continue
		}
		y := rowsTop + i*lineH
		if row == st.Row && ok {
			ebitenutil.DrawRect(screen, float64(rect.Min.X+6), float64(y-2), float64(rect.Dx()-12), float64(lineH+2), highlightColor)
		}
		g.drawText(screen, shortenEnd(formatRow(g.song, st.Pattern, row), maxChars), rect.Min.X+8, y)
	}
}

func formatRow(s *aonplay.Song, pattern, row int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d", row)
	for ch := 0; ch < s.Channels; ch++ {
		c, _ := s.Cell(pattern, row, ch)
		fmt.Fprintf(&b, "|%s%02X%X%X%02X", tui.NoteName(c.Note), c.Instrument, c.Arpeggio, c.Effect, c.Arg)
	}
	return b.String()
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) drawSlider(screen *ebiten.Image, rect image.Rectangle, label string, labelW int, value float64) {
	g.drawPanel(screen, rect)
	g.drawText(screen, label, rect.Min.X+8, rect.Min.Y+8)

	trackX := rect.Min.X + labelW
	trackW := rect.Dx() - labelW - 16
	trackY := rect.Min.Y + rect.Dy()/2 - 4
	if trackW < 20 {
		return
	}
	// Sunken track groove.
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW), 8, bevelDarker)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW-1), 1, borderColor)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), 1, 7, borderColor)
	fillW := int(float64(trackW) * clamp(value, 0, 1))
	if fillW > 2 {
		ebitenutil.DrawRect(screen, float64(trackX+1), float64(trackY+1), float64(fillW-1), 6, sliderFillColor)
	}
	knobX := min(max(trackX+fillW-5, trackX-5), trackX+trackW-5)
	knobRect := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	ebitenutil.DrawRect(screen, float64(knobRect.Min.X), float64(knobRect.Min.Y), float64(knobRect.Dx()), float64(knobRect.Dy()), panelColor)
	drawBorder(screen, knobRect)
}

func sliderValue(mx int, rect image.Rectangle, labelW int) (float64, bool) {
	trackX := rect.Min.X + labelW
	trackW := rect.Dx() - labelW - 16
	if trackW <= 0 {
		return 0, false
	}
	return clamp(float64(mx-trackX)/float64(trackW), 0, 1), true
}

func (g *game) updateVolumeFromMouse(mx int, rect image.Rectangle) {
	v, ok := sliderValue(mx, rect, 130)
	if !ok {
		return
	}
	g.volume = v
	g.player.SetMasterVolume(v)
	g.setStatus(fmt.Sprintf("Volume: %d%%", int(v*100+0.5)))
}

func (g *game) updateStereoFromMouse(mx int, rect image.Rectangle) {
	v, ok := sliderValue(mx, rect, 100)
	if !ok {
		return
	}
	g.stereoMix = v
	g.player.SetStereoMix(v)
	g.setStatus(fmt.Sprintf("Stereo mix: %d%%", int(v*100+0.5)))
}

func (g *game) clickNavigator(my int, rect image.Rectangle) {
	top := rect.Min.Y + 12 + (lineH * 2)
	row := (my - top) / lineH
	if row < 0 {
		return
	}
	idx := g.navScroll + row
	if idx < 0 || idx >= len(g.nav) {
		return
	}
	entry := g.nav[idx]
	if entry.isDir {
		g.cwd = entry.path
		g.navScroll = 0
		if err := g.refreshNav(); err != nil {
			g.setError(err.Error())
			return
		}
		g.setStatus("Directory: " + g.cwd)
		return
	}

	doubleClickSame := samePath(entry.path, g.lastNavPath) && (g.frameTick-g.lastNavClickTick) <= 18
	g.lastNavPath = entry.path
	g.lastNavClickTick = g.frameTick

	if err := g.loadFile(entry.path); err != nil {
		g.setError(err.Error())
		return
	}
	if doubleClickSame {
		g.restartPlayback()
		return
	}
	g.setStatus("Loaded " + filepath.Base(entry.path))
}

// isModule matches both "tune.aon" and the Amiga "aon.tune" naming.
func isModule(name string) bool {
	lower := strings.ToLower(name)
	switch filepath.Ext(lower) {
	case ".aon", ".aon4", ".aon8":
		return true
	}
	return strings.HasPrefix(lower, "aon.") || strings.HasPrefix(lower, "aon4.") || strings.HasPrefix(lower, "aon8.")
}

func (g *game) refreshNav() error {
	items, err := os.ReadDir(g.cwd)
	if err != nil {
		return err
	}
	dirs := make([]navEntry, 0)
	files := make([]navEntry, 0)

	parent := filepath.Dir(g.cwd)
	if parent != g.cwd {
		dirs = append(dirs, navEntry{name: "..", path: parent, isDir: true})
	}

	for _, it := range items {
		name := it.Name()
		full := filepath.Join(g.cwd, name)
		if it.IsDir() {
			dirs = append(dirs, navEntry{name: name, path: full, isDir: true})
			continue
		}
		if isModule(name) {
			files = append(files, navEntry{name: name, path: full})
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].name == ".." {
			return true
		}
		if dirs[j].name == ".." {
			return false
		}
		return strings.ToLower(dirs[i].name) < strings.ToLower(dirs[j].name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].name) < strings.ToLower(files[j].name)
	})
	g.nav = append(dirs, files...)
	return nil
}

func (g *game) loadFile(path string) error {
	s, err := aonplay.LoadFile(path)
	if err != nil {
		return err
	}
	_ = g.player.Stop()
	g.playing = false
	g.paused = false

	g.song = s
	g.loadedPath = path
	g.cwd = filepath.Dir(path)

	return g.refreshNav()
}

// cycleFilter rebuilds the player since the output filter is fixed per
// engine.
func (g *game) cycleFilter() {
	wasPlaying := g.playing
	g.filterIdx = (g.filterIdx + 1) % len(filterModels)
	if err := g.rebuildPlayer(); err != nil {
		g.setError(err.Error())
		return
	}
	if wasPlaying {
		g.restartPlayback()
		return
	}
	g.setStatus("Filter: " + filterModels[g.filterIdx].String())
}

func (g *game) rebuildPlayer() error {
	if g.player != nil {
		_ = g.player.Stop()
	}
	pl, err := aonplay.NewPlayer(
		uiSampleRate,
		aonplay.WithLoopPlayback(true),
		aonplay.WithFilter(filterModels[g.filterIdx]),
		aonplay.WithStereoMix(g.stereoMix),
		aonplay.WithScope(scopeSize),
		aonplay.WithSampleTap(g.analyzer.Tap),
	)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(g.volume)
	g.player = pl
	g.events = pl.Watch()
	g.playing = false
	g.paused = false
	return nil
}

func (g *game) togglePlayPause() {
	if !g.playing {
		g.restartPlayback()
		return
	}
	if g.paused {
		g.player.Resume()
		g.paused = false
		g.setStatus("Playing")
		return
	}
	g.player.Pause()
	g.paused = true
	g.setStatus("Paused")
}

func (g *game) restartPlayback() {
	if g.song == nil {
		g.setError("No module loaded")
		return
	}
	g.analyzer.Reset()
	if err := g.player.Play(g.song); err != nil {
		g.playing = false
		g.paused = false
		g.setError(err.Error())
		return
	}
	g.playing = true
	g.paused = false
	g.player.SetMasterVolume(g.volume)
	g.setStatus("Playing")
}

func (g *game) playButtonLabel() string {
	if !g.playing {
		return "Play"
	}
	if g.paused {
		return "Resume"
	}
	return "Pause"
}

func (g *game) playButtonColor() color.Color {
	if g.playing && !g.paused {
		return buttonPauseColor
	}
	return buttonColor
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func main() {
	var initialPath string
	if len(os.Args) > 1 {
		p, err := filepath.Abs(os.Args[1])
		if err != nil {
			log.Fatalf("resolve %q: %v", os.Args[1], err)
		}
		initialPath = p
	}

	g, err := newGame(initialPath)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("aonplay")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
