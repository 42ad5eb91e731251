package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// ErrStop is a special value returned from handlers to cease processing
var ErrStop = errors.New("stop processing requested")

// decodeWith extracts objects from the given decoder and passes them to the handler
func decodeWith(d Decoder, elemType reflect.Type, handler func(interface{}) error) error {
	for {
		elem := reflect.New(elemType).Interface()
		err := d.Decode(elem)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = handler(elem)
		if err == ErrStop {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Decode loads a series of objects from a file. If the path ends with .gz then
// the contents will be decompressed. The encoding is then determined by the
// remaining file extension, which can be .json or .gob.
//
//   var examples []Example
//   err := serialization.Decode("dataset.json.gz", func(ex *Example) {
//     examples = append(examples, *ex)
//   })
func Decode(path string, handler interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error loading %s: %v", path, err)
	}
	defer f.Close()
	return decodeAs(f, path, handler)
}

// decodeAs is like Decode but uses the provided path to determine the
// compression and encoding used in the file.
func decodeAs(r io.Reader, path string, handler interface{}) error {
	inpath := path

	switch {
	case strings.HasSuffix(path, ".gz"):
		path = strings.TrimSuffix(path, ".gz")
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("error opening gzip stream %s: %v", inpath, err)
		}
		defer gz.Close()
		r = gz
	}

	handlerType := reflect.TypeOf(handler)
	if handlerType.Kind() != reflect.Func || handlerType.NumIn() != 1 {
		return fmt.Errorf("handler must be a function of one argument, got %v", handlerType)
	}
	elemType := handlerType.In(0)
	if elemType.Kind() != reflect.Ptr {
		return fmt.Errorf("handler argument must be a pointer, got %v", elemType)
	}
	elemType = elemType.Elem()

	handlerVal := reflect.ValueOf(handler)
	wrapped := func(elem interface{}) error {
		out := handlerVal.Call([]reflect.Value{reflect.ValueOf(elem)})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
	if handlerType.NumOut() == 0 {
		wrapped = func(elem interface{}) error {
			handlerVal.Call([]reflect.Value{reflect.ValueOf(elem)})
			return nil
		}
	}

	var d Decoder
	switch {
	case strings.HasSuffix(path, ".json"):
		d = json.NewDecoder(r)
	case strings.HasSuffix(path, ".gob"):
		d = gob.NewDecoder(r)
	default:
		return fmt.Errorf("could not find decoder for %s", inpath)
	}

	return decodeWith(d, elemType, wrapped)
}
