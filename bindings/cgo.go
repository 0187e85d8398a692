package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/nickyhof/SnapDB/ps"
)

//export snapdb_open_memory
func snapdb_open_memory() C.int {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		return -1
	}
	return C.int(handles.open(persistence))
}

//export snapdb_open_file
func snapdb_open_file(path *C.char, history C.int) C.int {
	persistence, err := ps.NewFilePersistence(C.GoString(path), history != 0)
	if err != nil {
		return -1
	}
	return C.int(handles.open(persistence))
}

//export snapdb_close
func snapdb_close(handle C.int) C.int {
	if err := handles.close(int(handle)); err != nil {
		return -1
	}
	return 0
}

//export snapdb_execute
func snapdb_execute(handle C.int, query *C.char) *C.char {
	return C.CString(string(executeJSON(int(handle), C.GoString(query))))
}

//export snapdb_tables
func snapdb_tables(handle C.int) *C.char {
	return C.CString(string(tablesJSON(int(handle))))
}

//export snapdb_free
func snapdb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}
