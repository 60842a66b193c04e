/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package inline

import (
	"fmt"
	"strconv"

	"github.com/dc0d/onexit"
	"github.com/docker/go-units"
)

type SettingsT struct {
	Trace          bool
	TracePrint     bool
	CacheCapacity  int
	MaxArtifactRAM int64 // 0 = unlimited; warn when resident artifacts exceed this
}

var Settings SettingsT = SettingsT{false, false, DefaultCacheSize, 0}

// call this after you filled Settings
func InitSettings() {
	SetTrace(Settings.Trace)
	TracePrint = Settings.TracePrint
	onexit.Register(func() { SetTrace(false) }) // close trace file on exit
	InitMetricsSampler()
}

// ChangeSetting applies one "name=value" pair; sizes accept human figures
// like 64MB.
func ChangeSetting(name string, value string) error {
	switch name {
	case "Trace":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		Settings.Trace = b
		SetTrace(b)
	case "TracePrint":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		Settings.TracePrint = b
		TracePrint = b
	case "CacheCapacity":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		Settings.CacheCapacity = n
	case "MaxArtifactRAM":
		n, err := units.RAMInBytes(value)
		if err != nil {
			return err
		}
		Settings.MaxArtifactRAM = n
	default:
		return fmt.Errorf("unknown setting: %s", name)
	}
	return nil
}
