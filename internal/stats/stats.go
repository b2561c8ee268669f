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

// Package stats serves runtime statistics of the emulator over HTTP.
//
// After launch, graphs are viewable at:
//
//	<address>/debug/statsview
//
// And the standard Go pprof pages at:
//
//	<address>/debug/pprof/
package stats

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// DefaultAddress is used when no address is given.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine and returns a function
// that stops it.
func Launch(logger *log.Logger, address string) func() {
	if address == "" {
		address = DefaultAddress
	}

	viewer.SetConfiguration(viewer.WithAddr(address))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Stats server stopped", log.Err(err))
		}
	}()

	logger.Info("Stats server available", log.String("url", "http://"+address+url))

	return mgr.Stop
}
