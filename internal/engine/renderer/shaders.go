package renderer

// Attribute locations follow model.VertexLayout.
const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec3 aNormal;
layout (location = 3) in vec3 aTangent;
layout (location = 4) in vec3 aBitangent;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec2 vTexCoord;
out vec3 vNormal;

void main() {
    vTexCoord = aTexCoord;
    vNormal = mat3(uModel) * aNormal;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec2 vTexCoord;
in vec3 vNormal;

uniform sampler2D uAlbedo;
uniform vec3 uLightDir;
uniform float uAmbient;

out vec4 FragColor;

void main() {
    vec4 albedo = texture(uAlbedo, vTexCoord);

    // Meshes imported without normals are drawn unlit
    float light = 1.0;
    if (dot(vNormal, vNormal) > 0.0) {
        float diffuse = max(dot(normalize(vNormal), -normalize(uLightDir)), 0.0);
        light = uAmbient + (1.0 - uAmbient) * diffuse;
    }

    FragColor = vec4(albedo.rgb * light, albedo.a);
}
`
