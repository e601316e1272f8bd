package gcode

import (
	"fmt"
	"strings"

	"github.com/Ultimaker/libCharon/metadata"
)

// validateDialect dispatches on the "flavor" field and validates/restructures
// tree in place per spec.md §4.5. Any other flavor, including a missing one,
// fails.
func validateDialect(tree metadata.Tree) error {
	flavor, _ := tree["flavor"].(metadata.String)

	switch string(flavor) {
	case "Griffin":
		return validateGriffin(tree)
	case "UltiGCode":
		tree["machine_type"] = metadata.String("ultimaker2")

		return nil
	default:
		return fmt.Errorf("%w: unsupported flavor %q", ErrInvalidHeader, string(flavor))
	}
}

// validateGriffin enforces the Griffin dialect's required fields, then
// restructures the tree: target_machine.name becomes machine_type;
// print.size.min/max collapse into print.min_size/max_size; extruder_train
// is renamed to extruders.
func validateGriffin(tree metadata.Tree) error {
	if version, _ := tree[headerVersionKey].(metadata.String); string(version) != "0.1" {
		return fmt.Errorf("%w: GRIFFIN requires HEADER_VERSION 0.1", ErrInvalidHeader)
	}

	targetMachine, err := requireSubtree(tree, "target_machine")
	if err != nil {
		return err
	}

	if err := requireNonEmpty(targetMachine, "name", "TARGET_MACHINE.NAME"); err != nil {
		return err
	}

	generator, err := requireSubtree(tree, "generator")
	if err != nil {
		return err
	}

	for _, field := range []string{"name", "version", "build_date"} {
		if err := requireNonEmpty(generator, field, "GENERATOR."+strings.ToUpper(field)); err != nil {
			return err
		}
	}

	buildPlate, err := requireSubtree(tree, "build_plate")
	if err != nil {
		return err
	}

	if err := requirePositiveFloat(buildPlate, "initial_temperature", "BUILD_PLATE.INITIAL_TEMPERATURE"); err != nil {
		return err
	}

	print, err := requireSubtree(tree, "print")
	if err != nil {
		return err
	}

	size, err := requireSubtree(print, "size")
	if err != nil {
		return err
	}

	minSize, err := requireSubtree(size, "min")
	if err != nil {
		return err
	}

	maxSize, err := requireSubtree(size, "max")
	if err != nil {
		return err
	}

	for _, axis := range []string{"x", "y", "z"} {
		if err := requireAny(minSize, axis, "PRINT.SIZE.MIN."+axis); err != nil {
			return err
		}

		if err := requireAny(maxSize, axis, "PRINT.SIZE.MAX."+axis); err != nil {
			return err
		}
	}

	if _, hasPrintTime := print["time"]; !hasPrintTime {
		if _, hasTime := tree["time"]; !hasTime {
			return fmt.Errorf("%w: requires PRINT.TIME or TIME", ErrInvalidHeader)
		}
	}

	if extruderTrain, ok := tree["extruder_train"].(metadata.Tree); ok {
		for index := 0; index <= 9; index++ {
			key := fmt.Sprintf("%d", index)

			extruder, ok := extruderTrain[key].(metadata.Tree)
			if !ok {
				continue
			}

			nozzle, err := requireSubtree(extruder, "nozzle")
			if err != nil {
				return fmt.Errorf("%w: EXTRUDER_TRAIN.%s.NOZZLE missing", ErrInvalidHeader, key)
			}

			if err := requirePositiveFloat(nozzle, "diameter", "EXTRUDER_TRAIN."+key+".NOZZLE.DIAMETER"); err != nil {
				return err
			}

			material, err := requireSubtree(extruder, "material")
			if err != nil {
				return fmt.Errorf("%w: EXTRUDER_TRAIN.%s.MATERIAL missing", ErrInvalidHeader, key)
			}

			if err := requirePositiveFloat(material, "volume_used", "EXTRUDER_TRAIN."+key+".MATERIAL.VOLUME_USED"); err != nil {
				return err
			}

			if err := requirePositiveFloat(extruder, "initial_temperature", "EXTRUDER_TRAIN."+key+".INITIAL_TEMPERATURE"); err != nil {
				return err
			}
		}

		tree["extruders"] = extruderTrain
		delete(tree, "extruder_train")
	}

	tree["machine_type"] = targetMachine["name"]
	delete(tree, "target_machine")

	print["min_size"] = minSize
	print["max_size"] = maxSize
	delete(size, "min")
	delete(size, "max")
	delete(print, "size")

	return nil
}

func requireSubtree(tree metadata.Tree, key string) (metadata.Tree, error) {
	subtree, ok := tree[key].(metadata.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: missing required field %s", ErrInvalidHeader, key)
	}

	return subtree, nil
}

func requireAny(tree metadata.Tree, key, label string) error {
	if _, ok := tree[key]; !ok {
		return fmt.Errorf("%w: missing required field %s", ErrInvalidHeader, label)
	}

	return nil
}

// requireNonEmpty accepts any present value except null or an empty string;
// a field such as GENERATOR.VERSION:4.13 is coerced to a number and still
// counts as set.
func requireNonEmpty(tree metadata.Tree, key, label string) error {
	value, ok := tree[key]
	if _, isNull := value.(metadata.Null); !ok || value == nil || isNull || value == metadata.String("") {
		return fmt.Errorf("%w: missing required field %s", ErrInvalidHeader, label)
	}

	return nil
}

func requirePositiveFloat(tree metadata.Tree, key, label string) error {
	if !isPositive(tree[key]) {
		return fmt.Errorf("%w: missing required field %s", ErrInvalidHeader, label)
	}

	return nil
}

func isPositive(v metadata.Value) bool {
	switch val := v.(type) {
	case metadata.Int:
		return val > 0
	case metadata.Float:
		return val > 0
	default:
		return false
	}
}
