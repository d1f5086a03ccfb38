package fault

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownID = errors.New("fault: unknown error id")

// ID names one fault condition out of the platform's closed set.
type ID uint8

const (
	OCMECC ID = iota
	DDRECC
	LockstepCPU
	LPDWatchdog
	FPDWatchdog
	PLLLock
	ClockMonitor
	CSURom
	PMURom
	PMUService
	PMUTimer
	PMUUncorrectable
	CSUUncorrectable
	PLGeneric
	PowerTimeout
	XMPU

	// Count is the size of the closed identifier set.
	Count
)

type idInfo struct {
	name     string
	category Category
}

var idTable = [Count]idInfo{
	OCMECC:           {"ocm_ecc", Class1},
	DDRECC:           {"ddr_ecc", Class1},
	LockstepCPU:      {"rpu_lockstep", Class1},
	LPDWatchdog:      {"lpd_swdt", Class1},
	FPDWatchdog:      {"fpd_swdt", Class1},
	PLLLock:          {"pll_lock", Class1},
	ClockMonitor:     {"clock_monitor", Class1},
	CSURom:           {"csu_rom", Class2},
	PMURom:           {"pmu_rom", Class2},
	PMUService:       {"pmu_service", Class2},
	PMUTimer:         {"pmu_timer", Class2},
	PMUUncorrectable: {"pmu_uncorrectable", Class2},
	CSUUncorrectable: {"csu_uncorrectable", Class2},
	PLGeneric:        {"pl_generic", Class2},
	PowerTimeout:     {"power_timeout", Class2},
	XMPU:             {"xmpu", Class2},
}

// Valid reports whether id belongs to the closed set.
func (id ID) Valid() bool {
	return id < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("fault(%d)", uint8(id))
	}
	return idTable[id].name
}

// Category returns the status register that reports id, or CategoryUnknown
// for ids outside the set.
func (id ID) Category() Category {
	if !id.Valid() {
		return CategoryUnknown
	}
	return idTable[id].category
}

// IDs returns every known id in ascending order.
func IDs() []ID {
	out := make([]ID, 0, Count)
	for id := ID(0); id < Count; id++ {
		out = append(out, id)
	}
	return out
}

// ParseID resolves a config-file name such as "rpu_lockstep".
func ParseID(raw string) (ID, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for id := ID(0); id < Count; id++ {
		if idTable[id].name == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownID, raw)
}
