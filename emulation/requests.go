// This file is part of Panelpipe.
//
// Panelpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Panelpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Panelpipe.  If not, see <https://www.gnu.org/licenses/>.

package emulation

import "errors"

// FeatureReq is used to request the setting of an engine attribute eg. a
// pause request from the command line.
type FeatureReq string

// FeatureReqData represents the information associated with a FeatureReq. See
// commentary for the defined FeatureReq values for the underlying type.
type FeatureReqData any

// List of valid feature requests. The argument must be of the type
// specified.
//
// Note that, like the name suggests, these are requests. An engine may not
// support every request.
const (
	// pause or resume frame production
	ReqSetPause FeatureReq = "ReqSetPause" // bool

	// change the frame rate of the engine. zero or less is unlimited
	ReqSetFPS FeatureReq = "ReqSetFPS" // float32

	// engine specific selection of what is drawn
	ReqSetPattern FeatureReq = "ReqSetPattern" // string
)

// Sentinel errors returned by SetFeature().
var (
	ErrUnsupportedFeature = errors.New("emulation: unsupported feature")
	ErrFeatureArgument    = errors.New("emulation: wrong argument for feature")
)
