// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package strictyaml unmarshals YAML while rejecting unknown fields,
// so typos in a run configuration file surface as errors instead of
// silently keeping a default.
package strictyaml

import (
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"
)

// YamlUnmarshalStrictIgnoringFields does UnmarshalStrict but ignores unknown field errors for given fields
func YamlUnmarshalStrictIgnoringFields(in []byte, out interface{}, ignore ...string) (err error) {
	err = yaml.UnmarshalStrict(in, &out)
	if err != nil {
		// parse errors for unknown field errors
		for _, field := range ignore {
			unknownFieldErr := fmt.Sprintf("unknown field \"%s\"", field)
			if strings.Contains(err.Error(), unknownFieldErr) {
				// reset err on unknown masked fields
				err = nil
			}
		}
		// we have some other error
		return err
	}
	return nil
}
