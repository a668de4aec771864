//go:build mujoco
// +build mujoco

// Package mujocosim implements a hand simulator backed by MuJoCo. The
// MuJoCo headers and library must be available to cgo, for example
// through CGO_CFLAGS and CGO_LDFLAGS, and the package is only built
// with the mujoco build tag.
package mujocosim

// #cgo LDFLAGS: -lmujoco
// #include "mujoco.h"
// #include <stdlib.h>
//
// void setQPos(mjData* data, double* positions, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->qpos[i] = positions[i];
// 	}
// }
//
// void setCtrl(mjData* data, double* ctrl, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->ctrl[i] = ctrl[i];
// 	}
// }
import "C"

import (
	"fmt"
	"image"
	"os"
	"unsafe"
)

// Sim is a hand simulated by MuJoCo
type Sim struct {
	model     *C.mjModel
	data      *C.mjData
	frameSkip int

	nq, nv, nu int

	// touchSensors holds the sensordata address of each touch sensor
	touchSensors []int
}

// New loads the MuJoCo model at xmlPath. The touch argument lists the
// names of the touch sensors, in the order their readings should be
// reported.
func New(xmlPath string, frameSkip int, touch []string) (*Sim, error) {
	if frameSkip <= 0 {
		return nil, fmt.Errorf("new: frameSkip should be positive, got %v",
			frameSkip)
	}
	if _, err := os.Stat(xmlPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("new: no such path '%v'", xmlPath)
	}

	model, data, err := loadXML(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("new: could not load XML: %v", err)
	}

	s := &Sim{
		model:     model,
		data:      data,
		frameSkip: frameSkip,
		nq:        int(model.nq),
		nv:        int(model.nv),
		nu:        int(model.nu),
	}

	adr := intSliceC2Go(model.sensor_adr, int(model.nsensor))
	for _, name := range touch {
		id, err := s.nameToID(C.mjOBJ_SENSOR, name)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("new: %v", err)
		}
		s.touchSensors = append(s.touchSensors, adr[id])
	}

	return s, nil
}

func loadXML(file string) (*C.mjModel, *C.mjData, error) {
	modelName := C.CString(file)
	defer C.free(unsafe.Pointer(modelName))

	var errBuf [1000]C.char
	model := C.mj_loadXML(modelName, nil, &errBuf[0], C.int(len(errBuf)))
	if model == nil {
		return nil, nil, fmt.Errorf("could not construct model: %v",
			C.GoString(&errBuf[0]))
	}

	data := C.mj_makeData(model)
	if data == nil {
		C.mj_deleteModel(model)
		return nil, nil, fmt.Errorf("could not construct mjData")
	}
	return model, data, nil
}

// f64SliceC2Go converts a copy of a C double array to a Go []float64
//
// See https://github.com/golang/go/wiki/cgo#turning-c-arrays-into-go-slices
func f64SliceC2Go(array *C.double, n int) []float64 {
	if n == 0 {
		return []float64{}
	}
	list := (*[1 << 28]float64)(unsafe.Pointer(array))[:n:n]

	newList := make([]float64, n)
	copy(newList, list)
	return newList
}

func intSliceC2Go(array *C.int, n int) []int {
	out := make([]int, n)
	if n == 0 {
		return out
	}
	list := (*[1 << 28]C.int)(unsafe.Pointer(array))[:n:n]
	for i := range list {
		out[i] = int(list[i])
	}
	return out
}

func (s *Sim) nameToID(objType C.int, name string) (int, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	id := int(C.mj_name2id(s.model, objType, cName))
	if id < 0 {
		return 0, fmt.Errorf("no such object '%v'", name)
	}
	return id, nil
}

// JointNames returns the names of the model's joints
func (s *Sim) JointNames() []string {
	n := int(s.model.njnt)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = C.GoString(C.mj_id2name(s.model, C.mjOBJ_JOINT, C.int(i)))
	}
	return names
}

// JointQPosAddrs returns the address in qpos of each joint's first
// position coordinate. Free and ball joints occupy more than one
// coordinate, so nq may exceed the number of joints.
func (s *Sim) JointQPosAddrs() []int {
	return intSliceC2Go(s.model.jnt_qposadr, int(s.model.njnt))
}

// DefaultQPos returns the model's reference configuration qpos0
func (s *Sim) DefaultQPos() []float64 {
	return f64SliceC2Go(s.model.qpos0, s.nq)
}

// UpAxis returns the index of the vertical axis, MuJoCo models are
// z-up
func (s *Sim) UpAxis() int {
	return 2
}

// Reset resets the simulation data and sets the joint positions
func (s *Sim) Reset(qpos []float64) error {
	if len(qpos) != s.nq {
		return fmt.Errorf("reset: invalid position dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qpos), s.nq)
	}

	C.mj_resetData(s.model, s.data)
	if s.nq > 0 {
		C.setQPos(s.data, (*C.double)(unsafe.Pointer(&qpos[0])), C.int(s.nq))
	}
	C.mj_forward(s.model, s.data)
	return nil
}

// Step sets the actuator controls and advances the simulation
func (s *Sim) Step(ctrl []float64) error {
	if len(ctrl) != s.nu {
		return fmt.Errorf("step: invalid control dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(ctrl), s.nu)
	}

	if s.nu > 0 {
		C.setCtrl(s.data, (*C.double)(unsafe.Pointer(&ctrl[0])), C.int(s.nu))
	}
	for i := 0; i < s.frameSkip; i++ {
		C.mj_step(s.model, s.data)
	}
	return nil
}

// Dt returns the simulated time which passes on each call to Step
func (s *Sim) Dt() float64 {
	return float64(s.model.opt.timestep) * float64(s.frameSkip)
}

// QPos returns the joint positions
func (s *Sim) QPos() []float64 {
	return f64SliceC2Go(s.data.qpos, s.nq)
}

// QVel returns the joint velocities
func (s *Sim) QVel() []float64 {
	return f64SliceC2Go(s.data.qvel, s.nv)
}

// ActionBounds returns the actuator control ranges
func (s *Sim) ActionBounds() (low, high []float64) {
	bounds := f64SliceC2Go(s.model.actuator_ctrlrange, s.nu*2)

	low = make([]float64, s.nu)
	high = make([]float64, s.nu)
	for i := 0; i < s.nu; i++ {
		low[i] = bounds[2*i]
		high[i] = bounds[2*i+1]
	}
	return low, high
}

// Touch returns the readings of the configured touch sensors
func (s *Sim) Touch() []float64 {
	data := f64SliceC2Go(s.data.sensordata, int(s.model.nsensordata))
	touch := make([]float64, len(s.touchSensors))
	for i, adr := range s.touchSensors {
		touch[i] = data[adr]
	}
	return touch
}

// SitePos returns the world position of a named site. If the model
// has no site with the name, the position of the body with the name is
// returned instead.
func (s *Sim) SitePos(name string) ([]float64, error) {
	if id, err := s.nameToID(C.mjOBJ_SITE, name); err == nil {
		all := f64SliceC2Go(s.data.site_xpos, 3*int(s.model.nsite))
		return all[3*id : 3*id+3], nil
	}

	id, err := s.nameToID(C.mjOBJ_BODY, name)
	if err != nil {
		return nil, fmt.Errorf("sitePos: %v", err)
	}
	all := f64SliceC2Go(s.data.xpos, 3*int(s.model.nbody))
	return all[3*id : 3*id+3], nil
}

// Render is not available since the simulator links against MuJoCo
// without OpenGL
func (s *Sim) Render(w, h int) (image.Image, error) {
	return nil, fmt.Errorf("render: rendering requires an OpenGL context, " +
		"which the mujoco backend does not create")
}

// Close frees the MuJoCo model and data
func (s *Sim) Close() error {
	C.mj_deleteData(s.data)
	C.mj_deleteModel(s.model)
	s.data = nil
	s.model = nil
	return nil
}
