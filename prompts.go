package planviz

import (
	"fmt"
	"strings"
)

// StyleExtractionPrompt asks the text model to describe the reference interior.
const StyleExtractionPrompt = `You are an architectural visualizer preparing input for an image generation model.

Analyze the reference image and describe its interior style precisely:

1. Flooring: material, colour name, pattern, finish and plank or tile size.
2. Walls: colour (with a paint name or code if recognisable), texture, material, finish.
3. Ceiling: colour, texture, beams or coffers, light fixtures.
4. Furniture: every visible piece as "[item]: [style] [material] [colour] [distinguishing features]".
   Count chairs, tables, sofas, beds, cabinets, shelves, benches, ottomans and stools individually.
5. Lighting: natural light direction and intensity, each artificial fixture with its colour
   temperature, and the character of the shadows.
6. Decor: rugs, plants, artwork, soft furnishings and window treatments with size, colour and placement.
7. Colour palette: primary, secondary, accent and neutral colours by specific name.

Prefer concrete descriptions ("light oak planks, 6-inch, matte finish") over generic ones ("wood floor").
Return a structured plain-text description.`

// FloorPlanAnalysisPrompt asks the text model to describe the floor plan's architecture.
const FloorPlanAnalysisPrompt = `You are an architectural visualizer preparing input for an image generation model.

Analyze the floor plan image and describe:

1. Room types, reading every text label (bedroom, living/dining, kitchen, bathroom, balcony, WIC, ...).
2. Dimensions, when they are annotated.
3. Wall configuration: number of walls, corner angles, alcoves.
4. Openings: every door (wall, side, type, swing, width) and every window (wall, count, size, type).
5. Complete perimeter: the full outline including balconies, terraces and projections,
   and whether the footprint is rectangular, L-shaped, U-shaped or irregular.
6. Existing furniture outlines, if any, and whether the plan is furnished or empty.

Return a structured plain-text description.`

// ProbePrompt is the minimal request used to test whether a model returns images.
const ProbePrompt = "Generate a simple illustration of a red circle on a white background."

const renderPromptTemplate = `Primary directive: produce a 3D visualization whose geometry is a 1:1 replica of the provided 2D floor plan image.
Every wall, door, window and room boundary must sit exactly where the plan shows it.

Input analysis:
<style_guide>
{{style}}
</style_guide>
<architectural_plan>
{{plan}}
</architectural_plan>

Rendering command:
1. Geometry: replicate internal and external walls with their thickness, keep every room's shape
   and proportion, place all openings precisely and reproduce the full footprint without cropping.
2. Camera: top-down orthographic bird's eye view showing every room.
3. Styling: once the geometry is correct, apply the interior design from <style_guide> and furnish
   the rooms identified in <architectural_plan> with a logical, walkable layout.
4. Lighting and materials: physically based materials as described in the style guide, realistic
   global illumination and soft ambient occlusion.

Final check: confirm the 3D architecture matches the 2D plan before returning the image.`

// BuildRenderPrompt combines the style description and the plan analysis into the
// final render instruction. The result depends only on its two arguments.
func BuildRenderPrompt(style, plan string) string {
	r := strings.NewReplacer(
		"{{style}}", strings.TrimSpace(style),
		"{{plan}}", strings.TrimSpace(plan),
	)
	return r.Replace(renderPromptTemplate)
}

const furnitureDetectionTemplate = `You are an expert architectural analyst. Analyze this RENDERED floor plan image with extreme precision.

{{dimensions}}

Task: detect every furniture item visible in the render.

For each item:
1. Measure the center point of the piece and normalize it: x = center_x / image_width, y = center_y / image_height, with 3 decimal places.
2. Measure width and depth in pixels.
3. Estimate the rotation in degrees (0-360).
4. Name the room it stands in (bedroom, living_room, kitchen, bathroom, dining_room, ...).
5. Give the hex color of its dominant material and a confidence: 0.9+ for clear items, 0.7+ for partially visible ones.

Use names such as bed, nightstand, wardrobe, sofa, armchair, coffee_table, tv_stand, bookshelf, rug, dining_table, dining_chair, refrigerator, stove, sink, kitchen_counter, bar_stool, toilet, vanity, bathtub, shower, plant, lamp. Count each chair, plant or other repeated item separately.

Return a JSON array only, with no markdown wrapper:
[{"name": "sofa", "x": 0.234, "y": 0.567, "width": 120, "depth": 80, "rotation": 90, "room": "living_room", "color": "#8B6239", "confidence": 0.95}]`

// BuildFurnitureDetectionPrompt asks the text model to list the furniture in a
// render. width and height are the image size in pixels; zero means unknown.
func BuildFurnitureDetectionPrompt(width, height int) string {
	dims := "Image dimensions are unknown: normalize against the image's own width and height."
	if width > 0 && height > 0 {
		dims = fmt.Sprintf("Image dimensions: %d x %d pixels.", width, height)
	}
	return strings.Replace(furnitureDetectionTemplate, "{{dimensions}}", dims, 1)
}
