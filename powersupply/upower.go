// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powersupply

import (
	"fmt"

	dbus "github.com/godbus/dbus/v5"
	upower "github.com/linuxdeepin/go-dbus-factory/org.freedesktop.upower"
	ofdbus "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.dbus"
)

const upowerServiceName = "org.freedesktop.UPower"

// upowerLid reads the lid position from UPower, for machines that do not
// expose an ACPI lid button in procfs.
type upowerLid struct {
	obj upower.UPower
}

func newUPowerLid(sysBus *dbus.Conn) *upowerLid {
	if sysBus == nil {
		return nil
	}
	l, err := initUPowerLid(sysBus)
	if err != nil {
		logger.Warning("UPower lid fallback unavailable:", err)
		return nil
	}
	return l
}

func initUPowerLid(sysBus *dbus.Conn) (*upowerLid, error) {
	sysBusObj := ofdbus.NewDBus(sysBus)
	hasOwner, err := sysBusObj.NameHasOwner(0, upowerServiceName)
	if err != nil {
		return nil, err
	}
	if !hasOwner {
		return nil, fmt.Errorf("%v not export", upowerServiceName)
	}

	uPowerObj := upower.NewUPower(sysBus)
	present, err := uPowerObj.LidIsPresent().Get(0)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("no lid switch present")
	}
	return &upowerLid{obj: uPowerObj}, nil
}

func (l *upowerLid) closed() (bool, error) {
	return l.obj.LidIsClosed().Get(0)
}
