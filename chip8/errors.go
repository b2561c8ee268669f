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
	"errors"
	"fmt"
)

var (
	/// ErrProgramTooLarge is returned when a program won't fit in memory.
	///
	ErrProgramTooLarge = errors.New("program too large")

	/// ErrStackOverflow is returned when calling past the stack depth.
	///
	ErrStackOverflow = errors.New("stack overflow")

	/// ErrStackUnderflow is returned when returning with an empty stack.
	///
	ErrStackUnderflow = errors.New("stack underflow")

	/// ErrFetch is returned when an instruction can't be fetched.
	///
	ErrFetch = errors.New("fetch out of bounds")

	/// ErrUnknownOpcode is returned for instructions that don't decode.
	///
	ErrUnknownOpcode = errors.New("unknown opcode")
)

/// LoadError is returned by Load. The machine is not modified.
///
type LoadError struct {
	Size int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %d bytes (max %d): %v", e.Size, MaxProgramSize, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

/// FetchError is returned when the second byte of an instruction lies
/// beyond the end of memory.
///
type FetchError struct {
	Address uint16
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch at %04X: %v", e.Address, ErrFetch)
}

func (e *FetchError) Unwrap() error {
	return ErrFetch
}

/// OpcodeError reports an instruction that failed to decode. It is not
/// fatal, and execution continues past it.
///
type OpcodeError struct {
	Address uint16
	Word    uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%v %04X at %04X", ErrUnknownOpcode, e.Word, e.Address)
}

func (e *OpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

/// FatalError halts the virtual machine. Err is one of the stack errors
/// or a *FetchError.
///
type FatalError struct {
	Address uint16
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("halted at %04X: %v", e.Address, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
