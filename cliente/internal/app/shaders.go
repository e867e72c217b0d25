package app

// programSource é o código GLSL embutido de um programa.
type programSource struct {
	vertex, fragment string
}

// Vértices do terreno: posição relativa à região, cor, uv e luz
// (descritor, luz do céu 0..15).
const terrainVertexShader = `#version 330
layout(location = 0) in vec3 vertexPosition;
layout(location = 1) in vec4 vertexColor;
layout(location = 2) in vec2 vertexTexCoord;
layout(location = 3) in vec2 vertexLight;

uniform mat4 viewProjection;
uniform vec3 regionOrigin;

out vec4 fragColor;
out vec2 fragTexCoord;
out float fragSky;
flat out int fragDescriptor;

void main() {
    vec3 world = vertexPosition + regionOrigin;
    fragColor = vertexColor;
    fragTexCoord = vertexTexCoord;
    fragSky = vertexLight.y / 15.0;
    fragDescriptor = int(vertexLight.x);
    gl_Position = viewProjection * vec4(world, 1.0);
}
`

// Cada descritor ocupa dois texels RGBA32F: (r, g, b, intensidade) e (raio, 0, 0, 0).
const terrainFragmentShader = `#version 330
in vec4 fragColor;
in vec2 fragTexCoord;
in float fragSky;
flat in int fragDescriptor;

uniform samplerBuffer lightDescriptors;

layout(location = 0) out vec4 outColor;
layout(location = 1) out vec4 outLight;

void main() {
    vec2 edge = min(fragTexCoord, 1.0 - fragTexCoord);
    float grid = smoothstep(0.0, 0.04, min(edge.x, edge.y)) * 0.15 + 0.85;
    outColor = vec4(fragColor.rgb * grid, fragColor.a);

    vec3 emitted = vec3(0.0);
    if (fragDescriptor > 0) {
        vec4 light = texelFetch(lightDescriptors, fragDescriptor * 2);
        emitted = light.rgb * light.a;
    }
    outLight = vec4(vec3(0.25 + 0.6 * fragSky) + emitted, fragColor.a);
}
`

// Quad de tela cheia gerado por gl_VertexID; não usa buffer de vértices.
const fullscreenVertexShader = `#version 330
uniform mat4 projection;
uniform vec2 frameSize;

out vec2 fragUV;

const vec2 corners[6] = vec2[](
    vec2(0.0, 0.0), vec2(1.0, 0.0), vec2(1.0, 1.0),
    vec2(0.0, 0.0), vec2(1.0, 1.0), vec2(0.0, 1.0)
);

void main() {
    vec2 c = corners[gl_VertexID];
    fragUV = c;
    gl_Position = projection * vec4(c * frameSize, 0.0, 1.0);
}
`

const bloomFragmentShader = `#version 330
in vec2 fragUV;

uniform sampler2D sceneLight;

out vec4 outColor;

void main() {
    vec3 l = texture(sceneLight, fragUV).rgb;
    outColor = vec4(max(l - vec3(1.0), vec3(0.0)), 1.0);
}
`

const compositeFragmentShader = `#version 330
in vec2 fragUV;

uniform sampler2D sceneColor;
uniform sampler2D sceneLight;
uniform sampler2D bloom;
uniform int fogMode;

out vec4 outColor;

void main() {
    vec4 albedo = texture(sceneColor, fragUV);
    vec3 light = texture(sceneLight, fragUV).rgb;
    vec3 glow = textureLod(bloom, fragUV, 1.0).rgb;
    vec3 c = albedo.rgb * light + glow * 0.5;
    outColor = vec4(c / (c + vec3(1.0)) * 1.6, 1.0);
}
`

// Faixa de depuração: um quadrado por slot de entidade com a cor do seu
// descritor de luz.
const entityStripFragmentShader = `#version 330
in vec2 fragUV;

uniform samplerBuffer lightDescriptors;
uniform isamplerBuffer entityLights;
uniform vec2 frameSize;

out vec4 outColor;

void main() {
    vec2 px = fragUV * frameSize;
    if (px.y > 10.0) {
        discard;
    }
    int slot = int(px.x) / 10;
    if (slot >= textureSize(entityLights)) {
        discard;
    }
    int d = texelFetch(entityLights, slot).r;
    if (d < 0) {
        discard;
    }
    vec4 light = d > 0 ? texelFetch(lightDescriptors, d * 2) : vec4(0.2, 0.2, 0.2, 1.0);
    outColor = vec4(light.rgb, 1.0);
}
`

// builtinPrograms são usados quando o diretório de shaders não tem o par
// <nome>.vs/<nome>.fs.
var builtinPrograms = map[string]programSource{
	ProgramTerrain: {terrainVertexShader, terrainFragmentShader},
	"bloom":        {fullscreenVertexShader, bloomFragmentShader},
	"composite":    {fullscreenVertexShader, compositeFragmentShader},
	"entity_strip": {fullscreenVertexShader, entityStripFragmentShader},
}
