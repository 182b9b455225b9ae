// Package pod copies plain-old-data values in and out of a foreign process.
// A POD type holds no Go pointers, strings, slices, maps or interfaces, so its
// in-memory bytes mean the same thing on both sides of the copy.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"gosight/process"
)

var (
	ErrNotPOD        = errors.New("type contains pointers; not POD-safe")
	ErrShortBuffer   = errors.New("buffer too small")
	ErrZeroSizedType = errors.New("size of T is zero")
)

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

// ReadT reads sizeof(T) bytes at addr with one ReadMemory call and decodes them.
func ReadT[T any](proc process.Reader, addr process.ProcessMemoryAddress) (T, error) {
	var zero T

	size := SizeOf[T]()
	if size == 0 {
		return zero, ErrZeroSizedType
	}

	data, err := proc.ReadMemory(addr, size)
	if err != nil {
		return zero, err
	}

	return Decode[T](data)
}

// WriteT encodes v and writes it at addr with one WriteMemory call.
func WriteT[T any](proc process.Writer, addr process.ProcessMemoryAddress, v T) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrZeroSizedType
	}
	return proc.WriteMemory(addr, data)
}

// ReadSliceT reads count consecutive T values starting at addr in a single transfer.
func ReadSliceT[T any](proc process.Reader, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	if hasPointers[T]() {
		return nil, ErrNotPOD
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}

	data, err := proc.ReadMemory(addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, err
	}

	if len(data) < int(size)*count {
		return nil, fmt.Errorf("ReadSliceT: %w", ErrShortBuffer)
	}

	result := make([]T, count)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&result[0])), int(size)*count)
	copy(dst, data)

	return result, nil
}

// ReadPointerList reads count 8-byte pointers at addr in a single transfer.
// Null entries are kept so callers see the array as the target laid it out.
func ReadPointerList(proc process.Reader, addr process.ProcessMemoryAddress, count int) ([]process.ProcessMemoryAddress, error) {
	raw, err := ReadSliceT[uint64](proc, addr, count)
	if err != nil {
		return nil, fmt.Errorf("ReadPointerList: failed to read %d pointers at 0x%x: %w", count, addr, err)
	}

	results := make([]process.ProcessMemoryAddress, len(raw))
	for i, ptr := range raw {
		results[i] = process.ProcessMemoryAddress(ptr)
	}
	return results, nil
}

// Decode copies the first sizeof(T) bytes of data into a new T.
func Decode[T any](data []byte) (T, error) {
	var tmp T

	if hasPointers[T]() {
		return tmp, ErrNotPOD
	}

	size := int(unsafe.Sizeof(tmp))
	if len(data) < size {
		return tmp, ErrShortBuffer
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), size)
	copy(dst, data[:size])

	return tmp, nil
}

// Encode returns the raw in-memory bytes of v.
func Encode[T any](v T) ([]byte, error) {
	if hasPointers[T]() {
		return nil, ErrNotPOD
	}

	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}, nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out, nil
}

// CString returns the bytes before the first NUL, or all of b when there is none.
func CString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	return typeHasPointers(reflect.TypeFor[T]())
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
		return false
	}
}
