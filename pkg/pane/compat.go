package pane

import (
	"fmt"
	"slices"
	"strings"
)

// compatible lists the schema value types each input kind can edit.
var compatible = map[InputKind][]ValueType{
	KindTitle:      {TypeString},
	KindText:       {TypeString},
	KindNumber:     {TypeNumber, TypeInteger},
	KindCheckbox:   {TypeBoolean},
	KindColor:      {TypeInteger, TypeNumber},
	KindDate:       {TypeDate},
	KindSelect:     {TypeString, TypeStringList},
	KindBulletList: {TypeStringList},
	KindImage:      {TypeString, TypeStringList},
}

// Compatible reports whether an input kind can edit values of type t.
func Compatible(kind InputKind, t ValueType) bool {
	return slices.Contains(compatible[kind], t)
}

// checkField returns why field cannot edit values described by fs, or nil.
func checkField(fs FieldSchema, field FieldDescriptor) error {
	in := field.Input
	if _, ok := compatible[in.Kind]; !ok {
		return fmt.Errorf("unknown input kind %q", in.Kind)
	}
	if !Compatible(in.Kind, fs.Type) {
		return fmt.Errorf("%s input cannot edit %s values", in.Kind, fs.Type)
	}

	switch in.Kind {
	case KindTitle, KindText:
		if in.MinLength != nil && in.MaxLength != nil && *in.MinLength > *in.MaxLength {
			return fmt.Errorf("minLength %d exceeds maxLength %d", *in.MinLength, *in.MaxLength)
		}
	case KindNumber:
		if in.Min != nil && in.Max != nil && *in.Min > *in.Max {
			return fmt.Errorf("min %v exceeds max %v", *in.Min, *in.Max)
		}
	case KindColor:
		if fs.Min == nil || fs.Max == nil {
			return fmt.Errorf("colour field needs schema bounds within [0, %d]", MaxColor)
		}
		if *fs.Min < 0 || *fs.Max > MaxColor {
			return fmt.Errorf("colour bounds [%v, %v] exceed [0, %d]", *fs.Min, *fs.Max, MaxColor)
		}
	case KindSelect:
		if len(in.Options) == 0 {
			return fmt.Errorf("select input has no options")
		}
		if in.Multiple != (fs.Type == TypeStringList) {
			return fmt.Errorf("select multiple=%t cannot edit %s values", in.Multiple, fs.Type)
		}
		if len(fs.Enum) > 0 {
			for _, v := range in.OptionValues() {
				if !slices.Contains(fs.Enum, v) {
					return fmt.Errorf("option %q not allowed by schema", v)
				}
			}
		}
	case KindBulletList:
		return checkItems(in)
	case KindImage:
		if fs.Type == TypeStringList {
			if err := checkItems(in); err != nil {
				return err
			}
		} else if in.MinItems != nil || in.MaxItems != nil {
			return fmt.Errorf("item bounds need a %s value", TypeStringList)
		}
		if in.MaxSizeBytes != nil && *in.MaxSizeBytes < 0 {
			return fmt.Errorf("negative size limit %d", *in.MaxSizeBytes)
		}
		for _, pattern := range in.Accept {
			major, minor, ok := strings.Cut(pattern, "/")
			if !ok || major == "" || minor == "" {
				return fmt.Errorf("malformed media type pattern %q", pattern)
			}
		}
	}
	return nil
}

func checkItems(in Input) error {
	if in.MinItems != nil && *in.MinItems < 0 {
		return fmt.Errorf("negative minItems %d", *in.MinItems)
	}
	if in.MinItems != nil && in.MaxItems != nil && *in.MinItems > *in.MaxItems {
		return fmt.Errorf("minItems %d exceeds maxItems %d", *in.MinItems, *in.MaxItems)
	}
	return nil
}
