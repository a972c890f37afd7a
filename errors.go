package vkrs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

//Error classes. Every error produced by the renderer is marked with exactly one of these
//so callers can branch with errors.Is without parsing messages.
var (
	//No compatible GPU, queue family, memory type, layout transition, extension or shader file
	ErrFatalConfig = errors.New("vkrs: fatal configuration error")
	//Acquire or present reported the surface out of date. Recovered internally by recreation
	ErrSurfaceStale = errors.New("vkrs: surface out of date")
	//Any other non-success result from a vulkan call
	ErrDevice = errors.New("vkrs: vulkan device error")
	//Caller supplied data that cannot describe a drawable model
	ErrInvalidModel = errors.New("vkrs: invalid model data")
	//Descriptor pool has no room for another model
	ErrModelCapacity = errors.New("vkrs: model capacity exhausted")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

//Present treats suboptimal the same as out of date. Acquire only aborts on out of date since a
//suboptimal acquire still hands back a usable image and a pending semaphore signal.
func isStale(ret vk.Result) bool {
	return ret == vk.ErrorOutOfDate || ret == vk.Suboptimal
}

//checkResult is the single place vulkan result codes become go errors
func checkResult(ret vk.Result, op string) error {
	if !isError(ret) {
		return nil
	}
	if ret == vk.ErrorOutOfDate {
		return errors.Mark(errors.Newf("%s: %s (%d)", op, vk.Error(ret).Error(), ret), ErrSurfaceStale)
	}
	return errors.Mark(errors.Newf("%s: %s (%d)", op, vk.Error(ret).Error(), ret), ErrDevice)
}

func configError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrFatalConfig)
}

func capacityError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrModelCapacity)
}

func invalidModel(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidModel)
}

//Fatal runs the finalizers, appends the error to fatal_log.txt in the working directory and exits.
//Only the command entry point should call this, library code propagates.
func Fatal(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}

		fmt.Fprintf(os.Stderr, "vkrs: %+v\n", err)

		file, ferr := os.OpenFile(filepath.Join(".", "fatal_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if ferr != nil {
			log.Fatal(err)
		}
		fatal_log := log.New(file, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile)
		fatal_log.Fatalf("%+v", err)
	}
}

//checkErr turns a panic out of the bindings, such as a call through an unloaded proc, into ErrDevice
func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = errors.Mark(errors.Newf("%+v", v), ErrDevice)
	}
}
