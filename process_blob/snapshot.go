package process_blob

import (
	"encoding/binary"
	"fmt"
	"sort"

	"soulmem/pattern"
	"soulmem/process"
	"soulmem/process/memory_map"
)

// Snapshot is a multi-region in-memory process. It satisfies the full
// process.Process interface so anything written against a live game
// also runs against captured or hand-built memory.
type Snapshot struct {
	process.TypedReader

	pid   process.ProcessID
	name  string
	blobs []Blob
	mm    []memory_map.MemoryMapItem
}

var _ process.Process = (*Snapshot)(nil)

// NewSnapshot creates an empty snapshot. Regions are added with
// AddRegion or AddModule.
func NewSnapshot(pid process.ProcessID, name string) *Snapshot {
	s := &Snapshot{pid: pid, name: name}
	s.TypedReader = process.TypedReader{Mem: s}
	return s
}

// Name returns the recorded process name.
func (s *Snapshot) Name() string {
	return s.name
}

// AddRegion adds an anonymous read-write region.
func (s *Snapshot) AddRegion(addr process.ProcessMemoryAddress, data []byte) {
	s.addItem(memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(len(data)),
		Perms:   "rw-p",
	}, data)
}

// AddModule adds a region backed by a named module file, so FindModule
// locates it the way it would in a live process.
func (s *Snapshot) AddModule(path string, addr process.ProcessMemoryAddress, data []byte) {
	s.addItem(memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(len(data)),
		Perms:   "r-xp",
		Path:    path,
	}, data)
}

func (s *Snapshot) addItem(item memory_map.MemoryMapItem, data []byte) {
	s.blobs = append(s.blobs, NewBlob(process.ProcessMemoryAddress(item.Address), data))
	s.mm = append(s.mm, item)

	sort.Slice(s.blobs, func(i, j int) bool { return s.blobs[i].Address < s.blobs[j].Address })
	sort.Slice(s.mm, func(i, j int) bool { return s.mm[i].Address < s.mm[j].Address })
}

// Open is not supported; snapshots are constructed, not attached.
func (s *Snapshot) Open(pid process.ProcessID) error {
	return fmt.Errorf("snapshot does not attach to a live process, use LoadSnapshot or AddRegion")
}

func (s *Snapshot) Close() error {
	s.blobs = nil
	s.mm = nil
	return nil
}

func (s *Snapshot) GetPID() process.ProcessID {
	return s.pid
}

// UpdateMemoryMap is a no-op: snapshot memory is static.
func (s *Snapshot) UpdateMemoryMap() error {
	return nil
}

func (s *Snapshot) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	return memory_map.IsValidAddress2(uint64(addr), s.mm) != nil
}

func (s *Snapshot) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	out := make([]memory_map.MemoryMapItem, len(s.mm))
	copy(out, s.mm)
	return out, nil
}

func (s *Snapshot) FindModule(name string) (memory_map.ModuleRegion, error) {
	region := memory_map.FindModule(name, s.mm)
	if region == nil {
		return memory_map.ModuleRegion{}, fmt.Errorf("module %q: %w", name, process.ErrModuleNotFound)
	}
	return *region, nil
}

func (s *Snapshot) blobFor(addr process.ProcessMemoryAddress) *Blob {
	i := sort.Search(len(s.blobs), func(i int) bool {
		return s.blobs[i].End() > addr
	})
	if i < len(s.blobs) && s.blobs[i].Address <= addr {
		return &s.blobs[i]
	}
	return nil
}

// ReadMemory serves a read from the region containing addr. Reads
// crossing a region boundary fail, matching what a live process does
// when a read runs off the end of a mapping.
func (s *Snapshot) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	blob := s.blobFor(addr)
	if blob == nil {
		return nil, process.ErrAddressNotMapped
	}
	return blob.ReadMemory(addr, size)
}

// WriteMemory mutates snapshot contents in place. Fixtures use this to
// lay out pointer webs and flag words.
func (s *Snapshot) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	blob := s.blobFor(addr)
	if blob == nil || !blob.Contains(addr, process.ProcessMemorySize(len(data))) {
		return process.ErrAddressNotMapped
	}
	copy(blob.Data[uint64(addr-blob.Address):], data)
	return nil
}

// WriteUINT32 writes a little-endian uint32, a convenience for fixtures.
func (s *Snapshot) WriteUINT32(addr process.ProcessMemoryAddress, value uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	return s.WriteMemory(addr, buf)
}

// WriteUINT64 writes a little-endian uint64, a convenience for fixtures.
func (s *Snapshot) WriteUINT64(addr process.ProcessMemoryAddress, value uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	return s.WriteMemory(addr, buf)
}

// Save writes the snapshot back out as a dump directory.
func (s *Snapshot) Save(dirname string) error {
	return Capture(s, s.name, dirname)
}

// Scan searches every region for the pattern.
func (s *Snapshot) Scan(aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, fmt.Errorf("invalid pattern")
	}

	var results []process.ProcessMemoryAddress
	for _, blob := range s.blobs {
		for _, idx := range pattern.FindAll(blob.Data, aob) {
			results = append(results, blob.Address+process.ProcessMemoryAddress(idx))
		}
	}
	return results, nil
}

// ScanParallel exists to satisfy process.MemoryScanner; snapshot data
// is already resident so it just scans sequentially.
func (s *Snapshot) ScanParallel(aob process.AOB, maxdop uint) ([]process.ProcessMemoryAddress, error) {
	return s.Scan(aob)
}

func (s *Snapshot) ScanFirst(aob process.AOB) (process.ProcessMemoryAddress, error) {
	results, err := s.Scan(aob)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, process.ErrPatternNotFound
	}
	return results[0], nil
}

func (s *Snapshot) ScanInteger(value int64, size uint) ([]process.ProcessMemoryAddress, error) {
	aob, err := pattern.FromInteger(value, size)
	if err != nil {
		return nil, err
	}
	return s.Scan(aob)
}

func (s *Snapshot) ScanFloat(value float64, isFloat32 bool) ([]process.ProcessMemoryAddress, error) {
	return s.Scan(pattern.FromFloat(value, isFloat32))
}

func (s *Snapshot) ScanString(value string, isUTF16 bool) ([]process.ProcessMemoryAddress, error) {
	aob, err := pattern.FromString(value, isUTF16)
	if err != nil {
		return nil, err
	}
	return s.Scan(aob)
}
