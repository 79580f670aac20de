// Package project loads and saves armature rigs.
//
// A rig document holds a skeleton, graph properties, named animations, the
// blend graph, and optional skins. It is stored as YAML or JSON; both
// encodings share one schema:
//
//	version: 1
//	bones:
//	  - {id: 1, name: root, children: [2]}
//	  - {id: 2, name: arm, parent: 1, rest: {translation: [10, 0]}}
//	animations:
//	  - name: wave
//	    tracks:
//	      - bone: 2
//	        rotation: [{time: 0, value: 0}, {time: 1, value: 1.5, easing: quadInOut}]
//	graph:
//	  final: 1
//	  nodes:
//	    - {id: 1, type: Final Pose, inputs: {Out: 2}}
//	    - {id: 2, type: Animated Pose, params: {animation: wave, looping: true}}
//
// Node types are the display names of [armature.NodeKind]. Each kind's
// params are decoded with mapstructure, so numbers may be given where an
// expression string is expected and unknown keys are reported.
//
// [Build] validates a whole document and returns a [*DecodeError] listing
// every bad field rather than stopping at the first.
package project
