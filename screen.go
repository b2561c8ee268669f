package main

import (
	"fmt"

	"github.com/massung/chip-8/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

/// Screen is an SDL window showing the CHIP-8 display.
///
type Screen struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	scale    int32
}

/// NewScreen opens a window with each CHIP-8 pixel scale pixels wide.
///
func NewScreen(title string, scale int) (*Screen, error) {
	s := &Screen{scale: int32(scale)}

	w, h := chip8.Width*s.scale, chip8.Height*s.scale

	var err error

	// create the main window and renderer
	flags := sdl.WINDOW_OPENGL | sdl.WINDOWPOS_CENTERED
	if s.window, s.renderer, err = sdl.CreateWindowAndRenderer(w, h, uint32(flags)); err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	s.window.SetTitle(title)

	// create a render target for the display
	s.texture, err = s.renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_TARGET, chip8.Width, chip8.Height)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating render target: %w", err)
	}

	return s, nil
}

/// Destroy the window and everything rendering to it.
///
func (s *Screen) Destroy() {
	if s.texture != nil {
		_ = s.texture.Destroy()
	}
	_ = s.renderer.Destroy()
	_ = s.window.Destroy()
}

/// Present redraws the render target from the framebuffer and stretches
/// it over the window.
///
func (s *Screen) Present(fb *chip8.Framebuffer) error {
	if err := s.renderer.SetRenderTarget(s.texture); err != nil {
		return err
	}

	// the background color for the screen
	_ = s.renderer.SetDrawColor(143, 145, 133, 255)
	_ = s.renderer.Clear()

	// set the pixel color
	_ = s.renderer.SetDrawColor(17, 29, 43, 255)

	for y := range fb {
		for x, on := range fb[y] {
			if on {
				_ = s.renderer.DrawPoint(int32(x), int32(y))
			}
		}
	}

	// restore the render target
	if err := s.renderer.SetRenderTarget(nil); err != nil {
		return err
	}

	src := sdl.Rect{W: chip8.Width, H: chip8.Height}
	dst := sdl.Rect{W: chip8.Width * s.scale, H: chip8.Height * s.scale}

	if err := s.renderer.Copy(s.texture, &src, &dst); err != nil {
		return err
	}

	s.renderer.Present()

	return nil
}
