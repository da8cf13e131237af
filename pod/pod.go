// Package pod reads plain-old-data structs straight out of target
// memory. A struct passed to ReadT must mirror the target's in-memory
// layout: fixed-width fields only, explicit padding, no Go-managed
// references.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"soulmem/process"
)

// SizeOf reports the in-memory size of T.
func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

// ReadT reads sizeof(T) bytes at addr and reinterprets them as T.
func ReadT[T any](mem process.MemoryReader, addr process.ProcessMemoryAddress) (T, error) {
	var zero T

	size := SizeOf[T]()
	if size == 0 {
		return zero, errors.New("ReadT: size of T is zero")
	}
	if hasPointers[T]() {
		return zero, errors.New("ReadT: T contains pointers; not POD-safe")
	}

	data, err := mem.ReadMemory(addr, size)
	if err != nil {
		return zero, err
	}
	if len(data) < int(size) {
		return zero, errors.New("ReadT: short read")
	}

	var tmp T
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), int(size))
	copy(dst, data[:size])

	return tmp, nil
}

// ReadSliceT reads count consecutive T values starting at addr with a
// single raw read.
func ReadSliceT[T any](mem process.MemoryReader, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}
	if hasPointers[T]() {
		return nil, errors.New("ReadSliceT: T contains pointers; not POD-safe")
	}

	data, err := mem.ReadMemory(addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, fmt.Errorf("ReadSliceT: read at 0x%x: %w", addr, err)
	}

	elementSize := int(size)
	if len(data) < elementSize*count {
		return nil, errors.New("ReadSliceT: unexpected end of data")
	}

	result := make([]T, count)
	for i := 0; i < count; i++ {
		src := data[i*elementSize : (i+1)*elementSize]
		dst := unsafe.Slice((*byte)(unsafe.Pointer(&result[i])), elementSize)
		copy(dst, src)
	}

	return result, nil
}

// WriteT serializes a POD value into a raw byte slice using the
// in-memory layout, suitable for Process.WriteMemory or snapshot
// fixtures.
func WriteT[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// ReadPointerList reads count pointer-width slots at addr and returns
// the values that land in mapped readable memory.
func ReadPointerList(proc process.Process, addr process.ProcessMemoryAddress, count int) ([]process.ProcessMemoryAddress, error) {
	slots, err := ReadSliceT[uint64](proc, addr, count)
	if err != nil {
		return nil, fmt.Errorf("ReadPointerList: %w", err)
	}

	var results []process.ProcessMemoryAddress
	for _, slot := range slots {
		ptr := process.ProcessMemoryAddress(slot)
		if proc.IsValidAddress(ptr) {
			results = append(results, ptr)
		}
	}

	return results, nil
}

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	var t T
	return typeHasPointers(reflect.TypeOf(t))
}

func typeHasPointers(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
