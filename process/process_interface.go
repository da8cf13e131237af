package process

import (
	"soulmem/process/memory_map"
)

// MemoryReader is the single raw-read capability every higher layer is
// built on. A failed read (unmapped page, process gone, permission
// denied) is an error return; implementations never panic.
type MemoryReader interface {
	// ReadMemory reads size bytes from the target at addr
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// FindModule locates a loaded module by file basename and reports its
	// base address and total mapped size
	FindModule(name string) (memory_map.ModuleRegion, error)

	// ReadMemory reads memory from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes data to the process memory at the specified address
	WriteMemory(addr ProcessMemoryAddress, data []byte) error

	// Save captures the readable memory of the process into a snapshot directory
	Save(dirname string) error

	// Memory scanning operations
	MemoryScanner

	// Typed memory reading operations
	ProcessRead
}

// ProcessRead defines typed little-endian read operations derived from
// raw memory reads. Every method returns the zero value together with a
// non-nil error when the underlying read fails.
type ProcessRead interface {
	// ReadUINT8 reads an unsigned 8-bit integer from the specified address
	ReadUINT8(addr ProcessMemoryAddress) (uint8, error)

	// ReadUINT16 reads an unsigned 16-bit integer from the specified address
	ReadUINT16(addr ProcessMemoryAddress) (uint16, error)

	// ReadUINT32 reads an unsigned 32-bit integer from the specified address
	ReadUINT32(addr ProcessMemoryAddress) (uint32, error)

	// ReadUINT64 reads an unsigned 64-bit integer from the specified address
	ReadUINT64(addr ProcessMemoryAddress) (uint64, error)

	// ReadINT8 reads a signed 8-bit integer from the specified address
	ReadINT8(addr ProcessMemoryAddress) (int8, error)

	// ReadINT16 reads a signed 16-bit integer from the specified address
	ReadINT16(addr ProcessMemoryAddress) (int16, error)

	// ReadINT32 reads a signed 32-bit integer from the specified address
	ReadINT32(addr ProcessMemoryAddress) (int32, error)

	// ReadINT64 reads a signed 64-bit integer from the specified address
	ReadINT64(addr ProcessMemoryAddress) (int64, error)

	// ReadFLOAT32 reads a 32-bit floating point number from the specified address
	ReadFLOAT32(addr ProcessMemoryAddress) (float32, error)

	// ReadFLOAT64 reads a 64-bit floating point number from the specified address
	ReadFLOAT64(addr ProcessMemoryAddress) (float64, error)

	// ReadPOINTER reads a pointer-width value from the specified address
	ReadPOINTER(addr ProcessMemoryAddress) (ProcessMemoryAddress, error)

	// ReadPOINTER2 reads a pointer-width value from the specified address, zero on error
	ReadPOINTER2(addr ProcessMemoryAddress) ProcessMemoryAddress
}

// MemoryScanner defines operations for searching patterns in process memory
type MemoryScanner interface {
	// Scan searches for a pattern in process memory
	Scan(aob AOB) ([]ProcessMemoryAddress, error)

	// ScanParallel searches for a pattern in process memory using parallel scanning
	ScanParallel(aob AOB, maxdop uint) ([]ProcessMemoryAddress, error)

	// ScanFirst searches for the first occurrence of a pattern in process memory
	ScanFirst(aob AOB) (ProcessMemoryAddress, error)

	// ScanInteger searches for an integer value in memory
	ScanInteger(value int64, size uint) ([]ProcessMemoryAddress, error)

	// ScanFloat searches for a float value in memory
	ScanFloat(value float64, isFloat32 bool) ([]ProcessMemoryAddress, error)

	// ScanString searches for a string in memory
	ScanString(value string, isUTF16 bool) ([]ProcessMemoryAddress, error)
}
