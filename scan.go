package stackarena

import (
	"reflect"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v3"
)

// NoScanner is implemented by types whose pointer fields the garbage
// collector does not need to trace because they only refer to storage drawn
// from the same allocator, such as the links between container nodes.
// NoScan is called on the zero value and must depend on the type alone.
type NoScanner interface {
	NoScan() bool
}

var (
	pointerTypes = xsync.NewMapOf[reflect.Type, bool]()
	scanTypes    = xsync.NewMapOf[reflect.Type, bool]()

	// typedPins keeps typed heap blocks reachable until they are deallocated.
	typedPins = xsync.NewMapOf[uintptr, any]()
)

// HasPointers reports whether values of T hold pointers the garbage
// collector must trace. Strings, slices, maps, channels, functions and
// interfaces count as pointers.
func HasPointers[T any]() bool {
	t := reflect.TypeFor[T]()
	if v, ok := pointerTypes.Load(t); ok {
		return v
	}
	v, _ := pointerTypes.LoadOrStore(t, hasPointers(t))
	return v
}

// needsScan reports whether storage for T must stay visible to the garbage
// collector. Such storage is never placed in arena memory.
func needsScan[T any]() bool {
	t := reflect.TypeFor[T]()
	if v, ok := scanTypes.Load(t); ok {
		return v
	}
	var scan bool
	var zero T
	if ns, ok := any(zero).(NoScanner); ok {
		scan = !ns.NoScan()
	} else {
		scan = HasPointers[T]()
	}
	v, _ := scanTypes.LoadOrStore(t, scan)
	return v
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// allocTyped allocates count elements as an ordinary Go slice and pins it
// until freeTyped.
func allocTyped[T any](count int) *T {
	s := make([]T, count)
	p := unsafe.SliceData(s)
	typedPins.Store(uintptr(unsafe.Pointer(p)), s)
	return p
}

func freeTyped(p unsafe.Pointer) {
	typedPins.Delete(uintptr(p))
}
