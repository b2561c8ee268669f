/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"fmt"
	"strings"
)

/// SpritePolicy decides what happens to sprite pixels that fall off the
/// right or bottom edge of the display. The origin of a sprite always
/// wraps.
///
type SpritePolicy int

const (
	/// SpriteWrap draws off-screen pixels on the opposite edge.
	///
	SpriteWrap SpritePolicy = iota

	/// SpriteClip drops off-screen pixels, as the COSMAC VIP did.
	///
	SpriteClip
)

func (p SpritePolicy) String() string {
	switch p {
	case SpriteWrap:
		return "wrap"
	case SpriteClip:
		return "clip"
	}

	return fmt.Sprintf("SpritePolicy(%d)", int(p))
}

/// Quirks are the points where CHIP-8 interpreters have historically
/// disagreed. The zero value is DefaultQuirks.
///
type Quirks struct {
	/// ShiftUsesVY shifts vy into vx for 8XY6 and 8XYE. Otherwise vx is
	/// shifted in place and vy is ignored.
	///
	ShiftUsesVY bool

	/// LoadStoreIncrementsI leaves I pointing past the last register
	/// saved or loaded by FX55 and FX65.
	///
	LoadStoreIncrementsI bool

	/// ResetVF clears vf after OR, AND and XOR.
	///
	ResetVF bool

	/// JumpUsesVX makes BNNN jump to NNN + vx, where x is the top nibble
	/// of NNN, instead of NNN + v0.
	///
	JumpUsesVX bool

	/// Sprites is the edge policy for DXYN.
	///
	Sprites SpritePolicy

	/// WaitForRelease completes FX0A when the pressed key is let go
	/// rather than when it goes down.
	///
	WaitForRelease bool
}

/// DefaultQuirks match what most modern programs expect.
///
func DefaultQuirks() Quirks {
	return Quirks{}
}

/// LegacyQuirks match the original COSMAC VIP interpreter.
///
func LegacyQuirks() Quirks {
	return Quirks{
		ShiftUsesVY:          true,
		LoadStoreIncrementsI: true,
		ResetVF:              true,
		Sprites:              SpriteClip,
		WaitForRelease:       true,
	}
}

/// ParseQuirks returns the quirks preset with the given name.
///
func ParseQuirks(name string) (Quirks, error) {
	switch strings.ToLower(name) {
	case "", "modern", "default":
		return DefaultQuirks(), nil
	case "legacy", "cosmac", "vip":
		return LegacyQuirks(), nil
	}

	return Quirks{}, fmt.Errorf("unknown quirks preset: %s", name)
}
