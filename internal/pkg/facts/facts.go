// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package facts detects the read-only environment facts that tuning
// modules condition their policies on. Facts are computed once at the
// start of a run and passed into every module; modules never probe
// the host themselves.
package facts

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zcalusic/sysinfo"

	"github.com/archtune/archtune/internal/pkg/fstab"
)

// Facts are the environment facts a run is conditioned on.
type Facts struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Kernel   string `json:"kernel"`
	Product  string `json:"product"`

	RootDevice string `json:"rootDevice"`
	RootFSType string `json:"rootFsType"`
	RootIsSSD  bool   `json:"rootIsSsd"`

	HasDiscreteGPU bool   `json:"hasDiscreteGpu"`
	GPUVendor      string `json:"gpuVendor,omitempty"`
}

// A Detector probes the host for Facts. The sysfs and procfs roots
// are configurable so tests can point it at a fake tree.
type Detector struct {
	sysRoot  string
	procRoot string
	log      *logrus.Entry
}

// NewDetector returns a Detector probing the real /sys and /proc.
func NewDetector() *Detector {
	return &Detector{
		sysRoot:  "/sys",
		procRoot: "/proc",
		log:      logrus.WithField("component", "facts"),
	}
}

// WithSysRoot overrides the sysfs mount point.
func (d *Detector) WithSysRoot(root string) *Detector {
	d.sysRoot = root
	return d
}

// WithProcRoot overrides the procfs mount point.
func (d *Detector) WithProcRoot(root string) *Detector {
	d.procRoot = root
	return d
}

// Detect probes the host. Individual probes failing is not fatal;
// modules get conservative defaults for anything undetectable.
func (d *Detector) Detect() Facts {
	var si sysinfo.SysInfo
	si.GetSysInfo()

	facts := Facts{
		Hostname: si.Node.Hostname,
		OS:       strings.TrimSpace(si.OS.Name + " " + si.OS.Version),
		Kernel:   si.Kernel.Release,
		Product:  strings.TrimSpace(si.Product.Vendor + " " + si.Product.Name),
	}

	if root, ok := d.rootMount(); ok {
		facts.RootDevice = root.Source
		facts.RootFSType = root.FSType
		facts.RootIsSSD = d.isSSD(root.Source)
	} else {
		d.log.Warn("could not determine the root filesystem")
	}

	if vendor, ok := d.discreteGPU(); ok {
		facts.HasDiscreteGPU = true
		facts.GPUVendor = vendor
	}

	return facts
}

// rootMount finds the record mounted at / in /proc/self/mounts.
func (d *Detector) rootMount() (fstab.Record, bool) {
	content, err := os.ReadFile(filepath.Join(d.procRoot, "self", "mounts"))
	if err != nil {
		return fstab.Record{}, false
	}
	return fstab.Lookup(content, "/")
}

// Partitioned device names whose disk keeps a trailing number, so the
// partition suffix has to be matched explicitly.
var numberedDisk = regexp.MustCompile(`^(nvme\d+n\d+|mmcblk\d+)(p\d+)?$`)

// diskOf strips the partition number off a block device name:
// nvme0n1p2 becomes nvme0n1, sda2 becomes sda.
func diskOf(name string) string {
	if m := numberedDisk.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return strings.TrimRight(name, "0123456789")
}

// isSSD reads the rotational queue attribute of the disk backing the
// given device node. Anything unresolvable (UUID= sources, mapper
// devices) conservatively counts as rotational.
func (d *Detector) isSSD(source string) bool {
	if !strings.HasPrefix(source, "/dev/") {
		return false
	}
	name := strings.TrimPrefix(source, "/dev/")
	if strings.ContainsRune(name, '/') {
		return false
	}

	rotational, err := os.ReadFile(filepath.Join(d.sysRoot, "block", diskOf(name), "queue", "rotational"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(rotational)) == "0"
}

// PCI device classes 0x0300xx (VGA) and 0x0302xx (3D controller).
const displayClassPrefix = "0x03"

// Vendor IDs whose display controllers are discrete cards.
var discreteGPUVendors = map[string]string{
	"0x10de": "nvidia",
	"0x1002": "amd",
}

// discreteGPU scans the PCI bus for display-class devices from a
// discrete GPU vendor. AMD APUs also report vendor 0x1002, so a
// single AMD display device on a machine without any other display
// controller still counts as discrete here; the tuning it enables is
// harmless on an APU.
func (d *Detector) discreteGPU() (string, bool) {
	devices, err := filepath.Glob(filepath.Join(d.sysRoot, "bus", "pci", "devices", "*"))
	if err != nil {
		return "", false
	}
	for _, device := range devices {
		class, err := os.ReadFile(filepath.Join(device, "class"))
		if err != nil || !strings.HasPrefix(strings.TrimSpace(string(class)), displayClassPrefix) {
			continue
		}
		vendor, err := os.ReadFile(filepath.Join(device, "vendor"))
		if err != nil {
			continue
		}
		if name, ok := discreteGPUVendors[strings.TrimSpace(string(vendor))]; ok {
			return name, true
		}
	}
	return "", false
}
