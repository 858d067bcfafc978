// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

//go:build !windows

package rest

import (
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
)


// Secures the current process by creating a chroot environment
// (requires root) and changing the user ID to something without
// elevated rights. Raster file names are then resolved below chroot
func MakeSandbox(chroot string, setuid int, log zerolog.Logger) error {
	if len(chroot)>0 {
		log.Info().Str("chroot", chroot).Msg("changing filesystem root")
		if err:=syscall.Chroot(chroot); err!=nil {
			return fmt.Errorf("chroot(%s): %w", chroot, err)
		}
		if err:=os.Chdir("/"); err!=nil {
			return fmt.Errorf("chdir(/) in %s: %w", chroot, err)
		}
	}
	if setuid>=0 {
		log.Info().Int("uid", syscall.Getuid()).Int("euid", syscall.Geteuid()).Int("setuid", setuid).Msg("dropping user id")
		if err:=syscall.Setuid(setuid); err!=nil {
			return fmt.Errorf("setuid(%d): %w", setuid, err)
		}
	}
	return nil
}
